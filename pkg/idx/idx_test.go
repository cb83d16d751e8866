package idx

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := New()
	require.False(t, id.IsZero())
	require.Len(t, id.String(), 26)

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestNewIsMonotonic(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = New().String()
	}

	require.True(t, sort.StringsAreSorted(ids),
		"ids generated in sequence should sort in generation order")
}

func TestNewConcurrentUnique(t *testing.T) {
	const n = 200

	var mu sync.Mutex
	seen := make(map[ID]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := New()
			mu.Lock()
			defer mu.Unlock()
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}()
	}
	wg.Wait()
}

func TestNewAtEmbedsTime(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewAt(at)

	require.WithinDuration(t, at, id.Time(), time.Millisecond)
}

func TestParse(t *testing.T) {
	valid := New().String()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", valid, false},
		{"valid with whitespace", "  " + valid + "  ", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too short", "01ARZ3NDEKTSV", true},
		{"invalid characters", "01ARZ3NDEKTSV4RRFFQ69G5FA!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Parse(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				require.True(t, id.IsZero())
			} else {
				require.NoError(t, err)
				require.Equal(t, valid, id.String())
			}
		})
	}
}

func TestMustParsePanicsOnInvalid(t *testing.T) {
	require.Panics(t, func() { MustParse("not-a-ulid") })
	require.NotPanics(t, func() { MustParse(New().String()) })
}

func TestZero(t *testing.T) {
	require.True(t, Zero.IsZero())
	require.True(t, Zero.Time().IsZero())
}
