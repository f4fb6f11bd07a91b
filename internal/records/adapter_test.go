package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/googleapi"

	"github.com/desertthunder/inbody/internal/models"
	"github.com/desertthunder/inbody/internal/shared"
)

type fakeGate struct {
	valid    bool
	checks   int
	failures int
}

func (g *fakeGate) EnsureValid(context.Context) bool {
	g.checks++
	return g.valid
}

func (g *fakeGate) OnRemoteAuthFailure(context.Context) {
	g.failures++
	g.valid = false
}

// sheet is an in-memory spreadsheet that stores cells the way the API returns them.
type sheet struct {
	rows    [][]string
	err     error
	reads   int
	appends int
	lastRng string
}

func (s *sheet) Values(ctx context.Context, rng string) ([][]string, error) {
	s.reads++
	s.lastRng = rng
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]string, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *sheet) Append(ctx context.Context, rng string, rows [][]string) (*AppendResult, error) {
	s.appends++
	s.lastRng = rng
	if s.err != nil {
		return nil, s.err
	}
	s.rows = append(s.rows, rows...)
	n := len(s.rows)
	return &AppendResult{
		TableRange:   "Sheet1!A1:I" + strconv.Itoa(n-len(rows)),
		UpdatedRange: fmt.Sprintf("Sheet1!A%d:I%d", n, n),
		UpdatedRows:  int64(len(rows)),
		UpdatedCells: int64(len(rows) * Columns),
	}, nil
}

func newAdapter(gate *fakeGate, s *sheet) *Adapter {
	return NewAdapter(gate, s, "Sheet1!A:I", log.New(io.Discard))
}

var header = []string{"date", "weight", "bmi", "fat", "muscle", "bone", "visceral", "calories", "age"}

func TestAdapterReadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("reads and decodes rows", func(t *testing.T) {
		s := &sheet{rows: [][]string{header, {"26/02/09", "65.0", "21.1", "17.2", "50", "2.8", "5", "1498", "35"}}}
		a := newAdapter(&fakeGate{valid: true}, s)

		got, err := a.ReadAll(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []models.Measurement{{
			Date: "26/02/09", Weight: 65, BMI: 21.1, Fat: 17.2, Muscle: 50,
			Bone: 2.8, Visceral: 5, Calories: 1498, Age: 35,
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ReadAll() mismatch (-want +got):\n%s", diff)
		}
		if s.lastRng != "Sheet1!A:I" {
			t.Errorf("expected configured range, got %q", s.lastRng)
		}
	})

	t.Run("header only sheet", func(t *testing.T) {
		a := newAdapter(&fakeGate{valid: true}, &sheet{rows: [][]string{header}})

		got, err := a.ReadAll(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty slice, got %#v", got)
		}
	})

	t.Run("gate failure makes no call", func(t *testing.T) {
		s := &sheet{rows: [][]string{header}}
		a := newAdapter(&fakeGate{valid: false}, s)

		if _, err := a.ReadAll(ctx); !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if s.reads != 0 {
			t.Errorf("expected zero client calls, got %d", s.reads)
		}
	})

	t.Run("unauthorized invalidates session", func(t *testing.T) {
		gate := &fakeGate{valid: true}
		s := &sheet{err: &googleapi.Error{Code: http.StatusUnauthorized, Message: "Request had invalid authentication credentials."}}
		a := newAdapter(gate, s)

		if _, err := a.ReadAll(ctx); !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if gate.failures != 1 {
			t.Errorf("expected OnRemoteAuthFailure once, got %d", gate.failures)
		}

		if _, err := a.ReadAll(ctx); !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired on next call, got %v", err)
		}
		if s.reads != 1 {
			t.Errorf("expected no call after invalidation, got %d reads", s.reads)
		}
	})

	t.Run("forbidden invalidates session", func(t *testing.T) {
		gate := &fakeGate{valid: true}
		a := newAdapter(gate, &sheet{err: &googleapi.Error{Code: http.StatusForbidden}})

		if _, err := a.ReadAll(ctx); !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if gate.failures != 1 {
			t.Errorf("expected OnRemoteAuthFailure once, got %d", gate.failures)
		}
	})

	t.Run("other errors are remote store errors", func(t *testing.T) {
		gate := &fakeGate{valid: true}
		cause := &googleapi.Error{Code: http.StatusTooManyRequests}
		a := newAdapter(gate, &sheet{err: cause})

		_, err := a.ReadAll(ctx)
		if !errors.Is(err, shared.ErrRemoteStore) {
			t.Fatalf("expected ErrRemoteStore, got %v", err)
		}
		var gerr *googleapi.Error
		if !errors.As(err, &gerr) || gerr.Code != http.StatusTooManyRequests {
			t.Error("cause should stay inspectable")
		}
		if gate.failures != 0 {
			t.Error("non-auth errors must not invalidate the session")
		}
	})
}

func TestAdapterAppendOne(t *testing.T) {
	ctx := context.Background()
	entry := models.Measurement{
		Date: "26/02/10", Weight: 65.2, BMI: 21, Fat: 17, Muscle: 50.1,
		Bone: 2.8, Visceral: 5, Calories: 1500, Age: 35,
	}

	t.Run("append then read", func(t *testing.T) {
		existing := models.Measurement{Date: "26/02/09", Weight: 65.4, BMI: 21.1, Age: 35}
		s := &sheet{rows: [][]string{header, Encode(existing)}}
		a := newAdapter(&fakeGate{valid: true}, s)

		result, err := a.AppendOne(ctx, entry)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.UpdatedRows != 1 || result.UpdatedRange != "Sheet1!A3:I3" {
			t.Errorf("unexpected acknowledgment %+v", result)
		}

		want := []string{"26/02/10", "65.2", "21", "17", "50.1", "2.8", "5", "1500", "35"}
		if diff := cmp.Diff(want, s.rows[len(s.rows)-1]); diff != "" {
			t.Errorf("appended row mismatch (-want +got):\n%s", diff)
		}

		got, err := a.ReadAll(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]models.Measurement{existing, entry}, got); diff != "" {
			t.Errorf("ReadAll() after append mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("gate failure makes no call", func(t *testing.T) {
		s := &sheet{}
		a := newAdapter(&fakeGate{valid: false}, s)

		if _, err := a.AppendOne(ctx, entry); !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if s.appends != 0 {
			t.Errorf("expected zero client calls, got %d", s.appends)
		}
	})

	t.Run("unauthorized invalidates session", func(t *testing.T) {
		gate := &fakeGate{valid: true}
		a := newAdapter(gate, &sheet{err: fmt.Errorf("token source: %w", shared.ErrNotAuthenticated)})

		if _, err := a.AppendOne(ctx, entry); !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if gate.failures != 1 {
			t.Errorf("expected OnRemoteAuthFailure once, got %d", gate.failures)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		a := newAdapter(&fakeGate{valid: true}, &sheet{err: errors.New("connection reset")})

		if _, err := a.AppendOne(ctx, entry); !errors.Is(err, shared.ErrRemoteStore) {
			t.Fatalf("expected ErrRemoteStore, got %v", err)
		}
	})
}

func TestIsAuthError(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "401", err: &googleapi.Error{Code: 401}, want: true},
		{name: "403", err: &googleapi.Error{Code: 403}, want: true},
		{name: "wrapped 401", err: fmt.Errorf("get: %w", &googleapi.Error{Code: 401}), want: true},
		{name: "404", err: &googleapi.Error{Code: 404}, want: false},
		{name: "not authenticated", err: shared.ErrNotAuthenticated, want: true},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
