package records

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed contract.yaml
var defaultContract []byte

// ContractError reports a request body rejected by the contract.
type ContractError struct {
	OperationID string
	Field       string
	Message     string
}

func (e *ContractError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("records: %s: %s: %s", e.OperationID, e.Field, e.Message)
	}
	return fmt.Sprintf("records: %s: %s", e.OperationID, e.Message)
}

// Contract validates request bodies against an OpenAPI document.
type Contract struct {
	bodies map[string]*openapi3.SchemaRef
}

var (
	defaultContractOnce sync.Once
	defaultContractVal  *Contract
	defaultContractErr  error
)

// DefaultContract returns the embedded management API contract.
func DefaultContract() (*Contract, error) {
	defaultContractOnce.Do(func() {
		defaultContractVal, defaultContractErr = LoadContract(context.Background(), defaultContract)
	})
	return defaultContractVal, defaultContractErr
}

// LoadContract parses raw as an OpenAPI 3 document and indexes the JSON
// request body schema of every operation by operationId.
func LoadContract(ctx context.Context, raw []byte) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("records: contract document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("records: load contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("records: invalid contract: %w", err)
	}

	contract := &Contract{bodies: make(map[string]*openapi3.SchemaRef)}
	if doc.Paths == nil {
		return contract, nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op == nil || op.OperationID == "" || op.RequestBody == nil || op.RequestBody.Value == nil {
				continue
			}
			media := op.RequestBody.Value.Content.Get("application/json")
			if media == nil || media.Schema == nil {
				continue
			}
			contract.bodies[op.OperationID] = media.Schema
		}
	}
	return contract, nil
}

// ValidateBody checks body (any JSON-marshalable value) against the request
// schema of operationID. Operations without a request schema accept anything.
func (c *Contract) ValidateBody(operationID string, body any) error {
	if c == nil {
		return nil
	}
	ref, ok := c.bodies[operationID]
	if !ok || ref == nil || ref.Value == nil {
		return nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("records: encode %s body: %w", operationID, err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("records: decode %s body: %w", operationID, err)
	}

	if err := ref.Value.VisitJSON(value); err != nil {
		return contractError(operationID, err)
	}
	return nil
}

func contractError(operationID string, err error) error {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return &ContractError{
			OperationID: operationID,
			Field:       strings.Join(schemaErr.JSONPointer(), "."),
			Message:     strings.TrimSpace(schemaErr.Reason),
		}
	}
	return &ContractError{OperationID: operationID, Message: strings.TrimSpace(err.Error())}
}
