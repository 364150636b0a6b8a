package impl

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/errors"
)

// queryAs lists endpoint and decodes every record into T.
func queryAs[T any](ctx context.Context, metadata service.MetadataRecorder, endpoint string, params url.Values) ([]T, error) {
	records, err := metadata.Query(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(records))
	for _, record := range records {
		var item T
		if err := record.Decode(&item); err != nil {
			return nil, domainerrors.NewBackendUnavailableError(endpoint, 0, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// toPayload converts a document struct into the field map of a metadata write.
func toPayload(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, errors.WithStack(err)
	}

	return payload, nil
}

// matchesKey reports whether key is the backend id or the numeric ledger id of a record.
func matchesKey(key, backendID string, ledgerID int64) bool {
	if key == "" {
		return false
	}
	if key == backendID {
		return true
	}

	n, err := strconv.ParseInt(key, 10, 64)

	return err == nil && n > 0 && n == ledgerID
}

// filterRecords keeps the records whose decoded form passes keep.
func filterRecords[T any](records []entity.StoredRecord, keep func(T) bool) []entity.StoredRecord {
	out := make([]entity.StoredRecord, 0, len(records))
	for _, record := range records {
		var item T
		if err := record.Decode(&item); err != nil {
			continue
		}
		if keep(item) {
			out = append(out, record)
		}
	}

	return out
}
