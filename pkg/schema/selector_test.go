package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// salesYear builds sales202301..sales202312.
func salesYear() []string {
	var tables []string
	for m := 1; m <= 12; m++ {
		tables = append(tables, fmt.Sprintf("sales2023%02d", m))
	}
	return tables
}

func TestClassify(t *testing.T) {
	patterns := Classify([]string{"customers", "sales202301", "sales202302", "orders"})

	require.Len(t, patterns, 3)

	assert.Equal(t, PatternStatic, patterns["customers"].Type)
	assert.Equal(t, []string{"customers"}, patterns["customers"].Tables)

	assert.Equal(t, PatternStatic, patterns["orders"].Type)

	assert.Equal(t, PatternTemporal, patterns["sales"].Type)
	assert.ElementsMatch(t, []string{"sales202301", "sales202302"}, patterns["sales"].Tables)
}

func TestClassifySuffixBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		temporal bool
	}{
		{"six digit suffix", "sales202301", true},
		{"no suffix", "sales", false},
		{"five digits", "sales20231", false},
		{"seven digits", "sales2023011", false},
		{"digits mid-name", "sales202301_archive", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := Classify([]string{tt.table})
			require.Len(t, patterns, 1)
			for _, info := range patterns {
				if tt.temporal {
					assert.Equal(t, PatternTemporal, info.Type)
				} else {
					assert.Equal(t, PatternStatic, info.Type)
				}
			}
		})
	}
}

func TestSelectDateTokenPrecedence(t *testing.T) {
	patterns := Classify(salesYear())

	selected := Select(patterns, "revenue in 2023-06")
	assert.Equal(t, []string{"sales202306"}, selected)

	// Separator variants of the same token.
	assert.Equal(t, []string{"sales202306"}, Select(patterns, "revenue in 2023/06"))
	assert.Equal(t, []string{"sales202306"}, Select(patterns, "revenue in 202306"))
}

func TestSelectFallbackToRecent(t *testing.T) {
	patterns := Classify(salesYear())

	selected := Select(patterns, "how is revenue trending")
	assert.Equal(t, []string{"sales202310", "sales202311", "sales202312"}, selected)
}

func TestSelectStaticAlwaysIncluded(t *testing.T) {
	tables := append(salesYear(), "customers", "products")
	patterns := Classify(tables)

	selected := Select(patterns, "sales for 2023-03 by product")
	assert.Equal(t, []string{"customers", "products", "sales202303"}, selected)
}

func TestSelectDeterminism(t *testing.T) {
	patterns := Classify(append(salesYear(), "customers"))

	first := Select(patterns, "how is revenue trending")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Select(patterns, "how is revenue trending"))
	}
}

func TestSelectEmptyInput(t *testing.T) {
	assert.Empty(t, Select(map[string]TablePattern{}, "anything"))
}

func TestSelectFallbackAcrossGroups(t *testing.T) {
	// A date token that matches no period table leaves the temporal group
	// empty; the cross-group fallback kicks in.
	patterns := Classify([]string{"sales202301", "sales202302", "sales202303", "sales202304"})

	selected := Select(patterns, "revenue in 2021-01")
	assert.Equal(t, []string{"sales202302", "sales202303", "sales202304"}, selected)
}

func TestSelectDeduplicates(t *testing.T) {
	patterns := Classify([]string{"sales202305", "customers"})

	// The same month mentioned twice must not duplicate the table.
	selected := Select(patterns, "compare 2023-05 against 2023/05")
	assert.Equal(t, []string{"customers", "sales202305"}, selected)
}
