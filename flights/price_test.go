package flights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	formatted := FormatPrice(120, "EUR")
	assert.Contains(t, formatted, "€")
	assert.Contains(t, formatted, "120")

	// Unknown codes fall back to a plain rendering
	assert.Equal(t, "12.50 XXZ", FormatPrice(12.5, "XXZ"))
}
