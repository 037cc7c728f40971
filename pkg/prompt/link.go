package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formsync/pkg/reconcile"
	"github.com/goliatone/go-formsync/pkg/records"
	"github.com/goliatone/go-formsync/pkg/session"
	"github.com/goliatone/go-formsync/pkg/submission"
)

// LinkForm walks a user through a link session: category, link, then the
// derived title and description with fetched values offered as defaults.
type LinkForm struct {
	Driver     Driver
	Session    *session.LinkSession
	Categories []records.Category
}

// Run prompts for every field and submits. Rejection notices are printed
// through the driver and the *submission.Rejection is returned.
func (f *LinkForm) Run(ctx context.Context) (records.LinkPayload, error) {
	if f.Driver == nil || f.Session == nil {
		return records.LinkPayload{}, errors.New("prompt: link form requires a driver and a session")
	}

	if err := f.askCategory(ctx); err != nil {
		return records.LinkPayload{}, err
	}

	current := f.Session.Snapshot()
	defaultLink := current.LinkURL
	if defaultLink == "" && current.Record != nil {
		defaultLink = current.Record.URL
	}
	link, err := f.Driver.Input(ctx, InputConfig{
		Message: "링크 URL",
		Default: defaultLink,
	})
	if err != nil {
		return records.LinkPayload{}, err
	}
	f.Session.SetLinkURL(strings.TrimSpace(link))
	if err := f.Session.Wait(); err != nil {
		return records.LinkPayload{}, err
	}

	snap := f.Session.Snapshot()
	if snap.Identifier != "" && snap.Metadata == nil {
		if err := f.Driver.Info(ctx, "영상 정보를 불러오지 못했습니다. 직접 입력해 주세요."); err != nil {
			return records.LinkPayload{}, err
		}
	}

	title, err := f.Driver.Input(ctx, InputConfig{
		Message: "링크 제목",
		Default: snap.Title,
	})
	if err != nil {
		return records.LinkPayload{}, err
	}
	if title != snap.Title {
		f.Session.Edit(reconcile.FieldTitle, title)
	}

	description, err := f.Driver.TextArea(ctx, TextAreaConfig{
		Message: "설명",
		Default: snap.Description,
	})
	if err != nil {
		return records.LinkPayload{}, err
	}
	if description != snap.Description {
		f.Session.Edit(reconcile.FieldDescription, description)
	}

	ok, err := f.Driver.Confirm(ctx, ConfirmConfig{Message: "저장할까요?", Default: true})
	if err != nil {
		return records.LinkPayload{}, err
	}
	if !ok {
		return records.LinkPayload{}, ErrAborted
	}

	payload, err := f.Session.Submit(ctx)
	if err != nil {
		var rejection *submission.Rejection
		if errors.As(err, &rejection) {
			for _, msg := range rejection.Messages() {
				if infoErr := f.Driver.Info(ctx, msg); infoErr != nil {
					return records.LinkPayload{}, infoErr
				}
			}
		}
		return records.LinkPayload{}, err
	}
	return payload, nil
}

func (f *LinkForm) askCategory(ctx context.Context) error {
	if len(f.Categories) == 0 {
		return nil
	}
	current := f.Session.Snapshot().CategoryID
	options := make([]string, len(f.Categories))
	defaultIdx := 0
	for idx, category := range f.Categories {
		options[idx] = category.Title
		if category.ID == current {
			defaultIdx = idx
		}
	}
	idx, err := f.Driver.Select(ctx, SelectConfig{
		Message:      "카테고리",
		Options:      options,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(f.Categories) {
		return fmt.Errorf("prompt: category selection %d out of range", idx)
	}
	f.Session.SetCategory(f.Categories[idx].ID)
	return nil
}
