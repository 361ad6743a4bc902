package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name       string
		emphasized []string
		text       string
		want       string
	}{
		{
			name:       "bold span with vs",
			emphasized: []string{"DECISION", "THE UNITED STATES vs. PEDRO SANTOS"},
			text:       "ignored",
			want:       "THE UNITED STATES vs. PEDRO SANTOS",
		},
		{
			name:       "bold span too short",
			emphasized: []string{"A vs. B"},
			text:       "header\n  JUAN CRUZ v. MARIA CRUZ  \nbody",
			want:       "JUAN CRUZ v. MARIA CRUZ",
		},
		{
			name:       "only first three spans are considered",
			emphasized: []string{"one", "two", "three", "THE UNITED STATES vs. PEDRO SANTOS"},
			text:       "",
			want:       TitleNotFound,
		},
		{
			name: "line scan limited to twenty lines",
			text: strings.Repeat("filler\n", 20) + "A vs B",
			want: TitleNotFound,
		},
		{
			name: "dotted vs needs spaced form in plain text",
			text: "SMITH vs. JONES",
			want: TitleNotFound,
		},
		{
			name: "plain text vs",
			text: "\n\nSMITH vs JONES\n",
			want: "SMITH vs JONES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.emphasized, tt.text))
		})
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "short", Summary("short"))

	exact := strings.Repeat("x", 100)
	assert.Equal(t, exact, Summary(exact))

	long := strings.Repeat("ñ", 101)
	assert.Equal(t, strings.Repeat("ñ", 100)+"...", Summary(long))
}

func TestDedupTitle(t *testing.T) {
	assert.Equal(t, "SMITH vs. JONES", DedupTitle("SMITH vs. JONES SMITH vs. JONES"))
	assert.Equal(t, "SMITH vs. JONES", DedupTitle("SMITH vs. JONES"))
	// Too short to be considered
	assert.Equal(t, "A v. B A v. B", DedupTitle("A v. B A v. B"))
	assert.Equal(t, "PEOPLE vs. CRUZ PEOPLE vs. SANTOS", DedupTitle("PEOPLE vs. CRUZ PEOPLE vs. SANTOS"))
}

func TestRepairTitle(t *testing.T) {
	t.Run("span between header and marker", func(t *testing.T) {
		content := "EN BANC\n\n[ G.R. No. 1, August 15, 1901 ]\n\nSMITH,\n\nplaintiff,\n\nvs. JONES\n\nD E C I S I O N\n\nThe facts..."
		title, ok := RepairTitle(content)
		assert.True(t, ok)
		assert.Equal(t, "SMITH, plaintiff, vs. JONES", title)
	})

	t.Run("duplicated title is reduced", func(t *testing.T) {
		content := "[ G.R. No. 1, August 15, 1901 ]\n\nSMITH vs. JONES\n\nSMITH vs. JONES\n\nD E C I S I O N"
		title, ok := RepairTitle(content)
		assert.True(t, ok)
		assert.Equal(t, "SMITH vs. JONES", title)
	})

	t.Run("no header", func(t *testing.T) {
		_, ok := RepairTitle("SMITH vs. JONES\n\nD E C I S I O N")
		assert.False(t, ok)
	})

	t.Run("no marker", func(t *testing.T) {
		_, ok := RepairTitle("[ G.R. No. 1 ]\n\nSMITH vs. JONES\n\nRESOLUTION")
		assert.False(t, ok)
	})
}
