package qdrant

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

const scrollPageSize = 256

// ItemNameStore keeps the normalization corpus as Qdrant points. The seq
// payload field records append order; scrolled points are re-sorted by it.
type ItemNameStore struct {
	client *Client

	seqMu   sync.Mutex
	lastSeq int64
}

func NewItemNameStore(baseURL, collection string) *ItemNameStore {
	return &ItemNameStore{client: New(baseURL, collection)}
}

func (s *ItemNameStore) AppendItemName(ctx context.Context, record domain.ItemNameRecord) error {
	if len(record.Embedding) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "qdrant append item name", fmt.Errorf("record %q has no embedding", record.InputName))
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return s.client.upsert(ctx, []point{{
		ID:     pointID(record.ID),
		Vector: record.Embedding,
		Payload: map[string]any{
			"record_id":         record.ID,
			"input_name":        record.InputName,
			"standardized_name": record.StandardizedName,
			"created_at":        createdAt.Format(time.RFC3339Nano),
			"seq":               s.nextSeq(createdAt),
		},
	}})
}

func (s *ItemNameStore) ListItemNames(ctx context.Context) ([]domain.ItemNameRecord, error) {
	points, err := s.client.scrollAll(ctx, scrollPageSize)
	if err != nil {
		return nil, err
	}

	type seqRecord struct {
		seq    int64
		record domain.ItemNameRecord
	}
	rows := make([]seqRecord, 0, len(points))
	for _, p := range points {
		createdAt, _ := time.Parse(time.RFC3339Nano, getStringPayload(p.Payload, "created_at"))
		rows = append(rows, seqRecord{
			seq: getInt64Payload(p.Payload, "seq"),
			record: domain.ItemNameRecord{
				ID:               getStringPayload(p.Payload, "record_id"),
				InputName:        getStringPayload(p.Payload, "input_name"),
				StandardizedName: getStringPayload(p.Payload, "standardized_name"),
				Embedding:        p.Vector,
				CreatedAt:        createdAt,
			},
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]domain.ItemNameRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record)
	}
	return out, nil
}

// nextSeq is strictly increasing within the process even when two records
// share a timestamp.
func (s *ItemNameStore) nextSeq(at time.Time) int64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	seq := at.UnixMicro()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

// pointID keeps uuid record ids as-is and maps anything else onto a stable
// uuid, since Qdrant only accepts uuids or unsigned integers.
func pointID(recordID string) string {
	if _, err := uuid.Parse(recordID); err == nil {
		return recordID
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID)).String()
}
