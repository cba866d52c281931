package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veridian-id/veridian/internal/audit"
)

type stubAuditRepo struct {
	entries     []audit.Entry
	lastFilters audit.Filters
	lastLimit   int
	lastOffset  int
}

func (r *stubAuditRepo) ListEntries(ctx context.Context, filters audit.Filters, limit, offset int) ([]audit.Entry, error) {
	r.lastFilters = filters
	r.lastLimit = limit
	r.lastOffset = offset
	if offset >= len(r.entries) {
		return nil, nil
	}
	out := r.entries[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func seedEntries(n int) []audit.Entry {
	entries := make([]audit.Entry, 0, n)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		entries = append(entries, audit.Entry{
			ID:     int64(n - i),
			Action: "auth.login.succeeded",
			At:     base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return entries
}

func TestTimelinePagingWindow(t *testing.T) {
	repo := &stubAuditRepo{entries: seedEntries(25)}
	svc := audit.NewService(repo)

	result, err := svc.Timeline(context.Background(), audit.Filters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, result.Entries, 20)
	require.True(t, result.Paging.HasNext)
	require.Equal(t, 2, result.Paging.NextPage)
	require.Zero(t, result.Paging.PrevPage)
	require.Equal(t, 21, repo.lastLimit)

	result, err = svc.Timeline(context.Background(), audit.Filters{Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, result.Entries, 5)
	require.False(t, result.Paging.HasNext)
	require.Equal(t, 1, result.Paging.PrevPage)
	require.Equal(t, 20, repo.lastOffset)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubAuditRepo{entries: seedEntries(5)}
	svc := audit.NewService(repo)

	result, err := svc.Timeline(context.Background(), audit.Filters{PageSize: 500})
	require.NoError(t, err)
	require.Equal(t, 50, result.Paging.PageSize)
	require.Equal(t, 1, result.Paging.Page)
}

func TestTimelineRequiresRepository(t *testing.T) {
	svc := audit.NewService(nil)

	_, err := svc.Timeline(context.Background(), audit.Filters{})
	require.Error(t, err)
}
