package diagnostic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/beanls/pkg/diagnostic"
	"github.com/walteh/beanls/pkg/position"
	"github.com/walteh/beanls/pkg/validator"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) PublishDiagnostics(ctx context.Context, uri string, diagnostics []diagnostic.Diagnostic) error {
	args := m.Called(ctx, uri, diagnostics)
	return args.Error(0)
}

func lineRange(line int) position.Range {
	return position.Range{
		Start: position.Place{Line: line, Character: 0},
		End:   position.Place{Line: line + 1, Character: 0},
	}
}

func TestGroupEntries(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		wantFiles []string
		want      map[string][]diagnostic.Diagnostic
	}{
		{
			name:      "flagged_entries_in_one_file",
			output:    "2 errors found\n\n/a/b.bean:10: Unbalanced entry\n/a/b.bean:12: Missing account\n",
			wantFiles: []string{"/a/b.bean"},
			want: map[string][]diagnostic.Diagnostic{
				"/a/b.bean": {
					{Range: lineRange(9), Severity: diagnostic.SeverityWarning, Message: "Unbalanced entry", Source: diagnostic.Source},
					{Range: lineRange(11), Severity: diagnostic.SeverityWarning, Message: "Missing account", Source: diagnostic.Source},
				},
			},
		},
		{
			name:      "errors_before_flagged_first_seen_order",
			output:    "/a/z.bean:3: bad\n/a/b.bean:1: worse\n\n/a/z.bean:2: flagged\n",
			wantFiles: []string{"/a/z.bean", "/a/b.bean"},
			want: map[string][]diagnostic.Diagnostic{
				"/a/z.bean": {
					{Range: lineRange(2), Severity: diagnostic.SeverityError, Message: "bad", Source: diagnostic.Source},
					{Range: lineRange(1), Severity: diagnostic.SeverityWarning, Message: "flagged", Source: diagnostic.Source},
				},
				"/a/b.bean": {
					{Range: lineRange(0), Severity: diagnostic.SeverityError, Message: "worse", Source: diagnostic.Source},
				},
			},
		},
		{
			name:      "nothing_reported",
			output:    "",
			wantFiles: []string{},
			want:      map[string][]diagnostic.Diagnostic{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := diagnostic.GroupEntries(validator.ParseOutput(tt.output))

			assert.Equal(t, tt.wantFiles, g.Files())
			for file, want := range tt.want {
				assert.Equal(t, want, g.Get(file), file)
			}
		})
	}
}

func TestGroupNeverLosesEntries(t *testing.T) {
	out := validator.ParseOutput("/a.bean:1: a\n/b.bean:1: b\n/a.bean:2: c\n\n/b.bean:4: d\n")
	g := diagnostic.GroupEntries(out)

	assert.Equal(t, len(out.All()), g.Count())
	assert.Equal(t, 2, g.Len())
}

func TestRelative(t *testing.T) {
	g := diagnostic.NewGroup()
	g.Add("/ledger/main.bean", diagnostic.Diagnostic{Message: "a"})
	g.Add("accounts/cash.bean", diagnostic.Diagnostic{Message: "b"})
	g.Add("/elsewhere/other.bean", diagnostic.Diagnostic{Message: "c"})
	g.Add("/ledger/./main.bean", diagnostic.Diagnostic{Message: "d"})
	g.Add("", diagnostic.Diagnostic{Message: "dropped"})

	for _, root := range []string{"/ledger", "file:///ledger"} {
		t.Run(root, func(t *testing.T) {
			rel := g.Relative(root)

			assert.Equal(t, []string{
				"file:///ledger/main.bean",
				"file:///ledger/accounts/cash.bean",
				"file:///elsewhere/other.bean",
			}, rel.Files())

			assert.Equal(t, []diagnostic.Diagnostic{{Message: "a"}, {Message: "d"}}, rel.Get("file:///ledger/main.bean"))
		})
	}
}

func TestURIs(t *testing.T) {
	assert.Equal(t, "file:///a/b%20c.bean", diagnostic.FileURI("/a/b c.bean"))
	assert.Equal(t, "/a/b c.bean", diagnostic.URIPath("file:///a/b%20c.bean"))
	assert.Equal(t, "/plain/path", diagnostic.URIPath("/plain/path"))
}

func TestPublisherReplacesAndClears(t *testing.T) {
	ctx := context.Background()
	client := &MockClient{}
	p := diagnostic.NewPublisher(client)

	first := validator.Result{Seq: 1, Output: validator.ParseOutput("/ledger/a.bean:1: x\n/ledger/b.bean:2: y\n")}
	client.On("PublishDiagnostics", ctx, "file:///ledger/a.bean", []diagnostic.Diagnostic{
		{Range: lineRange(0), Severity: diagnostic.SeverityError, Message: "x", Source: diagnostic.Source},
	}).Return(nil).Once()
	client.On("PublishDiagnostics", ctx, "file:///ledger/b.bean", []diagnostic.Diagnostic{
		{Range: lineRange(1), Severity: diagnostic.SeverityError, Message: "y", Source: diagnostic.Source},
	}).Return(nil).Once()

	require.NoError(t, p.Publish(ctx, first, "/ledger"))
	client.AssertExpectations(t)

	// a.bean now has a different single diagnostic and b.bean is clean
	second := validator.Result{Seq: 2, Output: validator.ParseOutput("/ledger/a.bean:5: z\n")}
	client.On("PublishDiagnostics", ctx, "file:///ledger/a.bean", []diagnostic.Diagnostic{
		{Range: lineRange(4), Severity: diagnostic.SeverityError, Message: "z", Source: diagnostic.Source},
	}).Return(nil).Once()
	client.On("PublishDiagnostics", ctx, "file:///ledger/b.bean", []diagnostic.Diagnostic{}).Return(nil).Once()

	require.NoError(t, p.Publish(ctx, second, "/ledger"))
	client.AssertExpectations(t)
}

func TestPublisherWithoutClearStale(t *testing.T) {
	ctx := context.Background()
	client := &MockClient{}
	p := diagnostic.NewPublisher(client, diagnostic.WithClearStale(false))

	client.On("PublishDiagnostics", ctx, "file:///ledger/a.bean", mock.Anything).Return(nil).Once()
	require.NoError(t, p.Publish(ctx, validator.Result{Seq: 1, Output: validator.ParseOutput("/ledger/a.bean:1: x\n")}, "/ledger"))

	require.NoError(t, p.Publish(ctx, validator.Result{Seq: 2, Output: validator.ParseOutput("")}, "/ledger"))

	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "PublishDiagnostics", 1)
}

func TestPublisherSkipsFailedAndOlderRuns(t *testing.T) {
	ctx := context.Background()
	client := &MockClient{}
	p := diagnostic.NewPublisher(client)

	client.On("PublishDiagnostics", ctx, "file:///ledger/a.bean", mock.Anything).Return(nil).Once()
	require.NoError(t, p.Publish(ctx, validator.Result{Seq: 3, Output: validator.ParseOutput("/ledger/a.bean:1: newest\n")}, "/ledger"))

	// older run finishing late
	require.NoError(t, p.Publish(ctx, validator.Result{Seq: 2, Output: validator.ParseOutput("/ledger/a.bean:1: older\n")}, "/ledger"))

	// failed run
	require.NoError(t, p.Publish(ctx, validator.Result{Seq: 4, Err: errors.New("exit status 1")}, "/ledger"))

	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "PublishDiagnostics", 1)
}

func TestPublisherAggregatesErrors(t *testing.T) {
	ctx := context.Background()
	client := &MockClient{}
	p := diagnostic.NewPublisher(client)

	client.On("PublishDiagnostics", ctx, mock.Anything, mock.Anything).Return(errors.New("broken pipe")).Twice()

	err := p.Publish(ctx, validator.Result{Seq: 1, Output: validator.ParseOutput("/a.bean:1: x\n/b.bean:1: y\n")}, "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Contains(t, err.Error(), "file:///a.bean")
	assert.Contains(t, err.Error(), "file:///b.bean")
}
