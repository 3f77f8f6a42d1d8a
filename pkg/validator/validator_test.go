package validator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/beanls/pkg/validator"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErrors  []validator.Entry
		wantFlagged []validator.Entry
	}{
		{
			name:       "summary_then_flagged",
			input:      "2 errors found\n\n/a/b.bean:10: Unbalanced entry\n/a/b.bean:12: Missing account\n",
			wantErrors: []validator.Entry{},
			wantFlagged: []validator.Entry{
				{File: "/a/b.bean", Line: 10, Class: validator.ClassFlagged, Message: "Unbalanced entry"},
				{File: "/a/b.bean", Line: 12, Class: validator.ClassFlagged, Message: "Missing account"},
			},
		},
		{
			name:  "errors_with_continuation_lines",
			input: "/a/main.bean:4: Transaction does not balance\n   2024-01-01 * \"x\"\n     Assets:Cash  1 USD\nnot an entry\n",
			wantErrors: []validator.Entry{
				{File: "/a/main.bean", Line: 4, Class: validator.ClassError, Message: "Transaction does not balance\n2024-01-01 * \"x\"\nAssets:Cash  1 USD"},
			},
			wantFlagged: []validator.Entry{},
		},
		{
			name:  "windows_path_and_crlf",
			input: "C:\\ledger\\main.bean:7: Invalid reference\r\n\r\nC:\\ledger\\main.bean:9: Flagged\r\n",
			wantErrors: []validator.Entry{
				{File: "C:\\ledger\\main.bean", Line: 7, Class: validator.ClassError, Message: "Invalid reference"},
			},
			wantFlagged: []validator.Entry{
				{File: "C:\\ledger\\main.bean", Line: 9, Class: validator.ClassFlagged, Message: "Flagged"},
			},
		},
		{
			name:        "empty",
			input:       "",
			wantErrors:  []validator.Entry{},
			wantFlagged: []validator.Entry{},
		},
		{
			name:        "continuation_without_entry_is_dropped",
			input:       "   dangling\n/a/b.bean:0: zero line\n",
			wantErrors:  []validator.Entry{},
			wantFlagged: []validator.Entry{},
		},
		{
			name:  "json_sections",
			input: "[{\"file\":\"/a/b.bean\",\"line\":3,\"message\":\"bad\"}]\n[{\"file\":\"/a/c.bean\",\"line\":5,\"message\":\"flag\"},{\"file\":\"\",\"line\":1}]\n",
			wantErrors: []validator.Entry{
				{File: "/a/b.bean", Line: 3, Class: validator.ClassError, Message: "bad"},
			},
			wantFlagged: []validator.Entry{
				{File: "/a/c.bean", Line: 5, Class: validator.ClassFlagged, Message: "flag"},
			},
		},
		{
			name:  "malformed_json_falls_back_to_text",
			input: "[oops\n\n/a/b.bean:2: still parsed\n",
			wantErrors: []validator.Entry{},
			wantFlagged: []validator.Entry{
				{File: "/a/b.bean", Line: 2, Class: validator.ClassFlagged, Message: "still parsed"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := validator.ParseOutput(tt.input)
			assert.Equal(t, tt.wantErrors, out.Errors, "errors")
			assert.Equal(t, tt.wantFlagged, out.Flagged, "flagged")
		})
	}
}

func TestOutputAll(t *testing.T) {
	out := validator.ParseOutput("/a.bean:1: e\n\n/a.bean:2: f\n")

	all := out.All()
	require.Len(t, all, 2)
	assert.Equal(t, validator.ClassError, all[0].Class)
	assert.Equal(t, validator.ClassFlagged, all[1].Class)
	assert.Equal(t, "flagged", all[1].Class.String())
}

func TestRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		r := validator.NewRunner("sh", validator.WithArgs("-c", `printf 'checked\n\n%s:3: flagged txn\n' "$0"`))

		res := r.Run(ctx, "/ledger/main.bean")
		require.NoError(t, res.Err)
		require.NotNil(t, res.Output)
		assert.NotEmpty(t, res.RunID)
		assert.Equal(t, "/ledger/main.bean", res.File)
		assert.Equal(t, []validator.Entry{
			{File: "/ledger/main.bean", Line: 3, Class: validator.ClassFlagged, Message: "flagged txn"},
		}, res.Output.Flagged)
	})

	t.Run("stderr_is_captured", func(t *testing.T) {
		r := validator.NewRunner("sh", validator.WithArgs("-c", `echo "$0:1: from stderr" 1>&2`))

		res := r.Run(ctx, "/ledger/main.bean")
		require.NoError(t, res.Err)
		require.Len(t, res.Output.Errors, 1)
		assert.Equal(t, "from stderr", res.Output.Errors[0].Message)
	})

	t.Run("non_zero_exit", func(t *testing.T) {
		r := validator.NewRunner("sh", validator.WithArgs("-c", `echo "$0:1: boom"; exit 2`))

		res := r.Run(ctx, "/ledger/main.bean")
		require.Error(t, res.Err)
		assert.Nil(t, res.Output)
		assert.Contains(t, res.Raw, "boom")
	})

	t.Run("spawn_failure", func(t *testing.T) {
		r := validator.NewRunner("/definitely/not/a/validator")

		res := r.Run(ctx, "/ledger/main.bean")
		require.Error(t, res.Err)
		assert.Nil(t, res.Output)
	})

	t.Run("timeout", func(t *testing.T) {
		r := validator.NewRunner("sh", validator.WithArgs("-c", "sleep 5"), validator.WithTimeout(50*time.Millisecond))

		res := r.Run(ctx, "/ledger/main.bean")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "timed out")
	})

	t.Run("sequence_increases", func(t *testing.T) {
		r := validator.NewRunner("sh", validator.WithArgs("-c", "true"))

		first := r.Start(ctx, "/ledger/main.bean")
		second := r.Start(ctx, "/ledger/main.bean")

		a, b := <-first, <-second
		assert.Less(t, a.Seq, b.Seq)
		assert.NotEqual(t, a.RunID, b.RunID)

		_, open := <-first
		assert.False(t, open)
	})
}
