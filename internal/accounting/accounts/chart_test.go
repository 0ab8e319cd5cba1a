package accounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadChart(t *testing.T) {
	doc := `
accounts:
  - {code: "1000", name: Assets, type: ASSET}
  - {code: "1010", name: Cash on Hand, type: ASSET, parent: "1000"}
  - {code: "4000", name: Sales, type: REVENUE}
`
	specs, err := LoadChart(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, "1000", specs[1].ParentCode)
	assert.Equal(t, AccountTypeRevenue, specs[2].Type)
}

func TestLoadChartRejects(t *testing.T) {
	cases := map[string]string{
		"duplicate code": `
accounts:
  - {code: "1000", name: A, type: ASSET}
  - {code: "1000", name: B, type: ASSET}
`,
		"parent after child": `
accounts:
  - {code: "1010", name: Cash, type: ASSET, parent: "1000"}
  - {code: "1000", name: Assets, type: ASSET}
`,
		"unknown field": `
accounts:
  - {code: "1000", name: A, type: ASSET, colour: red}
`,
		"missing code": `
accounts:
  - {name: A, type: ASSET}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadChart(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestDefaultChartIsSelfConsistent(t *testing.T) {
	seen := map[string]bool{}
	for _, spec := range DefaultChart() {
		assert.True(t, spec.Type.Valid(), spec.Code)
		if spec.ParentCode != "" {
			assert.True(t, seen[spec.ParentCode], "parent of %s defined first", spec.Code)
		}
		seen[spec.Code] = true
	}
}
