package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slotkeeper/slotbot/internal/domain/slots"
	"github.com/slotkeeper/slotbot/slotbot/database/models"
)

func TestFormatExpiry(t *testing.T) {
	assert.Equal(t, "♾️ never", FormatExpiry(nil, slots.ExpiryLabel{Never: true}))

	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, fmt.Sprintf("<t:%d:f> (3 days left)", at.Unix()), FormatExpiry(&at, slots.ExpiryLabel{Days: 3}))
}

func TestFormatFlags(t *testing.T) {
	assert.Equal(t, "none", FormatFlags(&models.Slot{}))
	assert.Equal(t, "🔒 locked, 🔇 muted, ⚖️ under appeal",
		FormatFlags(&models.Slot{Locked: true, Muted: true, UnderAppeal: true}))
}

func TestFormatMentions(t *testing.T) {
	assert.Equal(t, "unlimited", FormatMentions(&models.Slot{UnlimitedMentions: true}))
	assert.Equal(t, "@here ❌  @everyone ✅", FormatMentions(&models.Slot{HereUsed: true}))
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		page, perPage, total int
		start, end           int
	}{
		{0, 10, 25, 0, 10},
		{2, 10, 25, 20, 25},
		{3, 10, 25, 25, 25},
		{0, 10, 0, 0, 0},
	}
	for _, tt := range tests {
		start, end := PageBounds(tt.page, tt.perPage, tt.total)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}

	assert.Equal(t, 1, PageCount(10, 0))
	assert.Equal(t, 3, PageCount(10, 25))
	assert.Equal(t, 2, PageCount(10, 20))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{fmt.Errorf("%w: bad days", slots.ErrInvalidArgument), UserError},
		{fmt.Errorf("%w: no slot", slots.ErrNotFound), NotFoundError},
		{slots.ErrNotPermitted, PermissionError},
		{slots.ErrBlacklisted, PermissionError},
		{slots.ErrOnCooldown, BusinessLogicError},
		{slots.ErrLimitReached, BusinessLogicError},
		{errors.New("connection reset"), SystemError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(tt.err), tt.err.Error())
	}
}
