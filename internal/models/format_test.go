package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", Currency(0))
	assert.Equal(t, "$1,234.50", Currency(1234.5))
	assert.Equal(t, "$2,261,536.78", Currency(2261536.7827))
	assert.Equal(t, "-$12.00", Currency(-12))
}

func TestCount(t *testing.T) {
	assert.Equal(t, "4,922", Count(4922))
	assert.Equal(t, "7", Count(7))
}
