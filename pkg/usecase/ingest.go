package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/utils/sanitize"
)

// IngestInput is one piece of content to add to the knowledge base.
type IngestInput struct {
	Content  string
	Source   string
	Metadata map[string]string
}

// Ingest embeds the content and stores it as a retrievable record.
// Unlike chat, ingest errors are surfaced to the caller.
func (uc *UseCases) Ingest(ctx context.Context, input IngestInput) (*model.Record, error) {
	content, err := sanitize.Text(input.Content, sanitize.DefaultMaxLength)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid content")
	}

	if raw, ok := input.Metadata["url"]; ok {
		cleaned, err := sanitize.URL(raw)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid url metadata")
		}
		input.Metadata["url"] = cleaned
	}

	record, err := uc.vector.Ingest(ctx, content, input.Source, input.Metadata)
	if err != nil {
		return nil, goerr.Wrap(err, "ingest failed")
	}

	uc.recorder.Record(ctx, "ingest", record.ID.String(), map[string]string{
		"source": input.Source,
	})

	return record, nil
}

// ListRecords pages through stored records, newest first.
func (uc *UseCases) ListRecords(ctx context.Context, limit, offset int) ([]*model.Record, int, error) {
	records, total, err := uc.repo.Record().ListWithPagination(ctx, limit, offset)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to list records")
	}
	return records, total, nil
}

// DeleteRecord removes a record from the knowledge base.
func (uc *UseCases) DeleteRecord(ctx context.Context, id types.RecordID) error {
	if err := uc.repo.Record().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete record", goerr.V("recordID", id))
	}

	uc.recorder.Record(ctx, "delete_record", id.String(), nil)
	return nil
}
