package query_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crobbins327/histocartography/pkg/query"
)

func recordSets() *query.ProjectionMap {
	return query.NewProjectionMap("public", "record_sets", "rs").
		Project("id", "ID").
		Project("name", "Name").
		Project("created_at", "CreatedAt")
}

func ptr(s string) *string { return &s }

const selectRecordSets = "SELECT rs.id, rs.name, rs.created_at FROM public.record_sets rs"

func TestProjectionMap(t *testing.T) {
	p := recordSets()

	if got := p.Table(); got != "public.record_sets rs" {
		t.Errorf("Table() = %q", got)
	}
	if got := p.From(); got != "public.record_sets rs" {
		t.Errorf("From() = %q", got)
	}
	if got := p.Columns(); got != "rs.id, rs.name, rs.created_at" {
		t.Errorf("Columns() = %q", got)
	}
	if got := p.Column("CreatedAt"); got != "rs.created_at" {
		t.Errorf("Column(CreatedAt) = %q", got)
	}
	if got := p.Column("rs.variant"); got != "rs.variant" {
		t.Errorf("unmapped Column() = %q, want passthrough", got)
	}
}

func TestProjectionMapJoin(t *testing.T) {
	p := query.NewProjectionMap("public", "meta_explanations", "m").
		Project("id", "ID").
		Join("public", "record_sets", "r", "JOIN", "m.record_set_id = r.id").
		Project("name", "RecordSetName")

	if got, want := p.Columns(), "m.id, r.name"; got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
	if got, want := p.Column("RecordSetName"), "r.name"; got != want {
		t.Errorf("Column(RecordSetName) = %q, want %q", got, want)
	}

	wantFrom := "public.meta_explanations m JOIN public.record_sets r ON m.record_set_id = r.id"
	if got := p.From(); got != wantFrom {
		t.Errorf("From() = %q, want %q", got, wantFrom)
	}

	sql, _ := query.NewBuilder(p).BuildSingle("ID", "x")
	if want := "SELECT m.id, r.name FROM " + wantFrom + " WHERE m.id = $1"; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		input string
		want  []query.SortField
	}{
		{"", nil},
		{"name", []query.SortField{{Field: "name"}}},
		{"-createdAt", []query.SortField{{Field: "createdAt", Descending: true}}},
		{" name , -createdAt ", []query.SortField{{Field: "name"}, {Field: "createdAt", Descending: true}}},
		{"name,,createdAt", []query.SortField{{Field: "name"}, {Field: "createdAt"}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, query.ParseSortFields(tt.input)); diff != "" {
				t.Errorf("ParseSortFields(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestBuilderPredicates(t *testing.T) {
	tests := []struct {
		name      string
		apply     func(*query.Builder)
		wantWhere string
		wantArgs  []any
	}{
		{
			name:  "none",
			apply: func(*query.Builder) {},
		},
		{
			name:      "equals",
			apply:     func(b *query.Builder) { b.WhereEquals("Name", "bracs") },
			wantWhere: " WHERE rs.name = $1",
			wantArgs:  []any{"bracs"},
		},
		{
			name:  "nil equals skipped",
			apply: func(b *query.Builder) { b.WhereEquals("Name", (*string)(nil)) },
		},
		{
			name:      "contains",
			apply:     func(b *query.Builder) { b.WhereContains("Name", ptr("bra")) },
			wantWhere: " WHERE rs.name ILIKE $1",
			wantArgs:  []any{"%bra%"},
		},
		{
			name:  "empty contains skipped",
			apply: func(b *query.Builder) { b.WhereContains("Name", ptr("")) },
		},
		{
			name:      "search",
			apply:     func(b *query.Builder) { b.WhereSearch(ptr("x"), "Name", "ID") },
			wantWhere: " WHERE (rs.name ILIKE $1 OR rs.id ILIKE $2)",
			wantArgs:  []any{"%x%", "%x%"},
		},
		{
			name:  "nil search skipped",
			apply: func(b *query.Builder) { b.WhereSearch(nil, "Name") },
		},
		{
			name: "combined numbering",
			apply: func(b *query.Builder) {
				b.WhereEquals("ID", "abc").WhereSearch(ptr("x"), "Name", "ID").WhereContains("Name", ptr("y"))
			},
			wantWhere: " WHERE rs.id = $1 AND (rs.name ILIKE $2 OR rs.id ILIKE $3) AND rs.name ILIKE $4",
			wantArgs:  []any{"abc", "%x%", "%x%", "%y%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := query.NewBuilder(recordSets())
			tt.apply(b)

			sql, args := b.BuildCount()
			if want := "SELECT COUNT(*) FROM public.record_sets rs" + tt.wantWhere; sql != want {
				t.Errorf("sql = %q, want %q", sql, want)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuilderBuildPage(t *testing.T) {
	b := query.NewBuilder(recordSets(), query.SortField{Field: "CreatedAt", Descending: true})
	b.WhereContains("Name", ptr("bracs"))

	sql, args := b.BuildPage(3, 25)
	want := selectRecordSets + " WHERE rs.name ILIKE $1 ORDER BY rs.created_at DESC LIMIT 25 OFFSET 50"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if diff := cmp.Diff([]any{"%bracs%"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilderOrderByFieldsOverridesDefault(t *testing.T) {
	b := query.NewBuilder(recordSets(), query.SortField{Field: "ID"})
	b.OrderByFields([]query.SortField{{Field: "CreatedAt", Descending: true}, {Field: "Name"}})

	sql, _ := b.BuildPage(1, 10)
	want := selectRecordSets + " ORDER BY rs.created_at DESC, rs.name ASC LIMIT 10 OFFSET 0"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	b := query.NewBuilder(recordSets())
	b.WhereContains("Name", ptr("ignored"))

	sql, args := b.BuildSingle("ID", "abc-123")
	if want := selectRecordSets + " WHERE rs.id = $1"; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if diff := cmp.Diff([]any{"abc-123"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}
