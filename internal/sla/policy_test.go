package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

var testCreatedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestResolveDueDates(t *testing.T) {
	policy := domain.SlaPolicy{
		domain.TicketPriorityUrgent: {ResponseMinutes: 15, ResolutionMinutes: 240},
	}

	dues, err := ResolveDueDates(testCreatedAt, domain.TicketPriorityUrgent, policy)
	require.NoError(t, err)
	assert.True(t, dues.FirstResponse.Equal(testCreatedAt.Add(15*time.Minute)))
	assert.True(t, dues.Resolution.Equal(testCreatedAt.Add(4*time.Hour)))
}

func TestResolveDueDatesDefaultPolicy(t *testing.T) {
	cases := []struct {
		priority          domain.TicketPriority
		responseMinutes   int
		resolutionMinutes int
	}{
		{domain.TicketPriorityUrgent, 15, 4 * 60},
		{domain.TicketPriorityHigh, 60, 8 * 60},
		{domain.TicketPriorityMedium, 4 * 60, 24 * 60},
		{domain.TicketPriorityLow, 8 * 60, 72 * 60},
	}
	for _, tc := range cases {
		t.Run(string(tc.priority), func(t *testing.T) {
			dues, err := ResolveDueDates(testCreatedAt, tc.priority, DefaultPolicy())
			require.NoError(t, err)
			assert.True(t, dues.FirstResponse.Equal(testCreatedAt.Add(time.Duration(tc.responseMinutes)*time.Minute)))
			assert.True(t, dues.Resolution.Equal(testCreatedAt.Add(time.Duration(tc.resolutionMinutes)*time.Minute)))
		})
	}
}

func TestResolveDueDatesMonotonicAcrossPriorities(t *testing.T) {
	ordered := []domain.TicketPriority{
		domain.TicketPriorityUrgent,
		domain.TicketPriorityHigh,
		domain.TicketPriorityMedium,
		domain.TicketPriorityLow,
	}

	var prev DueDates
	for i, priority := range ordered {
		dues, err := ResolveDueDates(testCreatedAt, priority, DefaultPolicy())
		require.NoError(t, err)
		if i > 0 {
			assert.False(t, dues.FirstResponse.Before(prev.FirstResponse),
				"response due for %s precedes the more urgent level", priority)
			assert.False(t, dues.Resolution.Before(prev.Resolution),
				"resolution due for %s precedes the more urgent level", priority)
		}
		prev = dues
	}
}

func TestResolveDueDatesInvalidPriority(t *testing.T) {
	_, err := ResolveDueDates(testCreatedAt, "CRITICAL", DefaultPolicy())
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestResolveDueDatesMissingPriorityTargets(t *testing.T) {
	policy := domain.SlaPolicy{
		domain.TicketPriorityLow: {ResponseMinutes: 480, ResolutionMinutes: 4320},
	}
	_, err := ResolveDueDates(testCreatedAt, domain.TicketPriorityUrgent, policy)
	assert.ErrorIs(t, err, ErrIncompletePolicy)
}

func TestResolveDueDatesZeroTargets(t *testing.T) {
	policy := domain.SlaPolicy{
		domain.TicketPriorityUrgent: {ResponseMinutes: 0, ResolutionMinutes: 0},
	}
	dues, err := ResolveDueDates(testCreatedAt, domain.TicketPriorityUrgent, policy)
	require.NoError(t, err)
	assert.True(t, dues.FirstResponse.Equal(testCreatedAt))
	assert.True(t, dues.Resolution.Equal(testCreatedAt))
}

func TestValidatePolicy(t *testing.T) {
	t.Run("complete policy", func(t *testing.T) {
		assert.NoError(t, ValidatePolicy(DefaultPolicy()))
	})

	t.Run("missing priority", func(t *testing.T) {
		policy := DefaultPolicy()
		delete(policy, domain.TicketPriorityHigh)
		assert.ErrorIs(t, ValidatePolicy(policy), ErrIncompletePolicy)
	})

	t.Run("resolution below response", func(t *testing.T) {
		policy := DefaultPolicy()
		policy[domain.TicketPriorityMedium] = domain.SlaTarget{ResponseMinutes: 120, ResolutionMinutes: 60}
		err := ValidatePolicy(policy)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolution target")
	})

	t.Run("unknown priority key", func(t *testing.T) {
		policy := DefaultPolicy()
		policy["BLOCKER"] = domain.SlaTarget{ResponseMinutes: 5, ResolutionMinutes: 30}
		assert.ErrorIs(t, ValidatePolicy(policy), ErrInvalidPriority)
	})
}
