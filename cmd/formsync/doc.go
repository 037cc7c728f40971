// Command formsync manages link and template records from the terminal:
// extracting video identifiers, filling link forms with fetched metadata,
// and validating question templates before they are saved.
package main
