package jsonpath

import (
	"os"
	"strings"
	"testing"

	"github.com/jppquery/jsonpath/internal/ast"
	"github.com/jppquery/jsonpath/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleInitialized(t *testing.T) {
	data, err := os.ReadFile("go.mod")
	if err != nil {
		t.Fatal("go.mod not found:", err)
	}
	content := string(data)

	if !strings.Contains(content, "module github.com/jppquery/jsonpath") {
		t.Error("go.mod missing correct module path")
	}
	if !strings.Contains(content, "go 1.26") {
		t.Error("go.mod missing go 1.26 directive")
	}
}

func decode(t *testing.T, json string) value.Value {
	t.Helper()
	v, err := value.Decode([]byte(json))
	require.NoError(t, err)
	return v
}

func TestPath_Select_NameSelector(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		selector ast.Selector
		want     []value.Value
	}{
		{
			name:     "select existing key",
			input:    `{"a": 1, "b": 2}`,
			selector: ast.NameSelector("a"),
			want:     []value.Value{value.Number(1)},
		},
		{
			name:     "select missing key",
			input:    `{"a": 1}`,
			selector: ast.NameSelector("b"),
			want:     []value.Value{},
		},
		{
			name:     "select from non-object",
			input:    `[1, 2, 3]`,
			selector: ast.NameSelector("a"),
			want:     []value.Value{},
		},
		{
			name:     "select nested object",
			input:    `{"a": {"b": 42}}`,
			selector: ast.NameSelector("a"),
			want:     []value.Value{decode(t, `{"b": 42}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := ast.Child(tt.selector)
			query := ast.NewPathQuery(true, seg)
			path := &Path{query: query}
			got := path.Select(decode(t, tt.input))
			assert.Equal(t, tt.want, []value.Value(got))
		})
	}
}

func TestPath_Select_IndexSelector(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		selector ast.Selector
		want     []value.Value
	}{
		{
			name:     "select positive index",
			input:    `[10, 20, 30]`,
			selector: ast.IndexSelector(1),
			want:     []value.Value{value.Number(20)},
		},
		{
			name:     "select negative index",
			input:    `[10, 20, 30]`,
			selector: ast.IndexSelector(-1),
			want:     []value.Value{value.Number(30)},
		},
		{
			name:     "select negative index -2",
			input:    `[10, 20, 30]`,
			selector: ast.IndexSelector(-2),
			want:     []value.Value{value.Number(20)},
		},
		{
			name:     "select out of bounds positive",
			input:    `[10, 20]`,
			selector: ast.IndexSelector(5),
			want:     []value.Value{},
		},
		{
			name:     "select out of bounds negative",
			input:    `[10, 20]`,
			selector: ast.IndexSelector(-5),
			want:     []value.Value{},
		},
		{
			name:     "select from non-array",
			input:    `{"a": 1}`,
			selector: ast.IndexSelector(0),
			want:     []value.Value{},
		},
		{
			name:     "select from empty array",
			input:    `[]`,
			selector: ast.IndexSelector(0),
			want:     []value.Value{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := ast.Child(tt.selector)
			query := ast.NewPathQuery(true, seg)
			path := &Path{query: query}
			got := path.Select(decode(t, tt.input))
			assert.Equal(t, tt.want, []value.Value(got))
		})
	}
}

func nums(vals ...float64) []value.Value {
	out := make([]value.Value, len(vals))
	for i, v := range vals {
		out[i] = value.Number(v)
	}
	return out
}

func TestPath_Select_SliceSelector(t *testing.T) {
	tests := []struct {
		name  string
		input string
		slice ast.SliceArgs
		want  []value.Value
	}{
		{
			name:  "slice with start and end",
			input: `[0, 1, 2, 3, 4]`,
			slice: ast.SliceArgs{Start: 1, End: 3, HasStart: true, HasEnd: true},
			want:  nums(1, 2),
		},
		{
			name:  "slice with only start",
			input: `[0, 1, 2, 3, 4]`,
			slice: ast.SliceArgs{Start: 2, HasStart: true},
			want:  nums(2, 3, 4),
		},
		{
			name:  "slice with only end",
			input: `[0, 1, 2, 3, 4]`,
			slice: ast.SliceArgs{End: 3, HasEnd: true},
			want:  nums(0, 1, 2),
		},
		{
			name:  "slice with step",
			input: `[0, 1, 2, 3, 4, 5]`,
			slice: ast.SliceArgs{Start: 0, End: 6, Step: 2, HasStart: true, HasEnd: true, HasStep: true},
			want:  nums(0, 2, 4),
		},
		{
			name:  "slice with negative start",
			input: `[0, 1, 2, 3, 4]`,
			slice: ast.SliceArgs{Start: -2, HasStart: true},
			want:  nums(3, 4),
		},
		{
			name:  "slice with negative end",
			input: `[0, 1, 2, 3, 4]`,
			slice: ast.SliceArgs{End: -1, HasEnd: true},
			want:  nums(0, 1, 2, 3),
		},
		{
			name:  "slice with negative step",
			input: `[0, 1, 2, 3, 4]`,
			slice: ast.SliceArgs{Start: 4, End: 0, Step: -1, HasStart: true, HasEnd: true, HasStep: true},
			want:  nums(4, 3, 2, 1),
		},
		{
			name:  "slice with step 0 returns empty",
			input: `[0, 1, 2, 3, 4]`,
			slice: ast.SliceArgs{Step: 0, HasStep: true},
			want:  []value.Value{},
		},
		{
			name:  "slice from empty array",
			input: `[]`,
			slice: ast.SliceArgs{Start: 0, End: 5, HasStart: true, HasEnd: true},
			want:  []value.Value{},
		},
		{
			name:  "slice from non-array",
			input: `{"a": 1}`,
			slice: ast.SliceArgs{Start: 0, End: 5, HasStart: true, HasEnd: true},
			want:  []value.Value{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := ast.Child(ast.SliceSelector(tt.slice))
			query := ast.NewPathQuery(true, seg)
			path := &Path{query: query}
			got := path.Select(decode(t, tt.input))
			assert.Equal(t, tt.want, []value.Value(got))
		})
	}
}

func TestPath_Select_WildcardSelector(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []value.Value
	}{
		{
			name:  "wildcard on object",
			input: `{"a": 1, "b": 2, "c": 3}`,
			want:  nums(1, 2, 3),
		},
		{
			name:  "wildcard on array",
			input: `[10, 20, 30]`,
			want:  nums(10, 20, 30),
		},
		{
			name:  "wildcard on empty object",
			input: `{}`,
			want:  []value.Value{},
		},
		{
			name:  "wildcard on empty array",
			input: `[]`,
			want:  []value.Value{},
		},
		{
			name:  "wildcard on primitive",
			input: `42`,
			want:  []value.Value{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := ast.Child(ast.WildcardSelector())
			query := ast.NewPathQuery(true, seg)
			path := &Path{query: query}
			got := path.Select(decode(t, tt.input))
			assert.Len(t, got, len(tt.want))
			if len(tt.want) > 0 {
				assert.ElementsMatch(t, tt.want, []value.Value(got))
			}
		})
	}
}

func TestPath_Select_MultipleSelectors(t *testing.T) {
	input := decode(t, `{"a": 1, "b": 2, "c": 3}`)

	seg := ast.Child(ast.NameSelector("a"), ast.NameSelector("c"))
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}
	got := path.Select(input)

	assert.Equal(t, nums(1, 3), []value.Value(got))
}

func TestPath_Select_MultipleSegments(t *testing.T) {
	input := decode(t, `{"store": {"book": [
		{"title": "Book 1", "price": 10},
		{"title": "Book 2", "price": 20}
	]}}`)

	seg1 := ast.Child(ast.NameSelector("store"))
	seg2 := ast.Child(ast.NameSelector("book"))
	seg3 := ast.Child(ast.IndexSelector(0))
	seg4 := ast.Child(ast.NameSelector("title"))

	query := ast.NewPathQuery(true, seg1, seg2, seg3, seg4)
	path := &Path{query: query}
	got := path.Select(input)

	assert.Equal(t, []value.Value{value.String("Book 1")}, []value.Value(got))
}

func TestPath_Select_DescendantSelector(t *testing.T) {
	input := decode(t, `{
		"a": 1,
		"b": {"a": 2, "c": {"a": 3}},
		"d": [{"a": 4}, {"b": 5}]
	}`)

	seg := ast.Descendant(ast.NameSelector("a"))
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}
	got := path.Select(input)

	assert.ElementsMatch(t, nums(1, 2, 3, 4), []value.Value(got))
}

func TestPath_Select_DescendantWildcard(t *testing.T) {
	input := decode(t, `{"a": 1, "b": {"c": 2, "d": 3}, "e": [4, 5]}`)

	seg := ast.Descendant(ast.WildcardSelector())
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}
	got := path.Select(input)

	assert.ElementsMatch(t, []value.Value{
		value.Number(1),
		decode(t, `{"c": 2, "d": 3}`),
		value.Number(2),
		value.Number(3),
		decode(t, `[4, 5]`),
		value.Number(4),
		value.Number(5),
	}, []value.Value(got))
}

func TestPath_Select_NilQuery(t *testing.T) {
	path := &Path{query: nil}
	got := path.Select(decode(t, `{"a": 1}`))
	assert.Nil(t, got)
}

func TestPath_Select_ComplexPath(t *testing.T) {
	input := decode(t, `{"store": {"book": [
		{"category": "reference", "author": "Nigel Rees", "title": "Sayings of the Century", "price": 8.95},
		{"category": "fiction", "author": "Evelyn Waugh", "title": "Sword of Honour", "price": 12.99},
		{"category": "fiction", "author": "Herman Melville", "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99}
	]}}`)

	seg1 := ast.Child(ast.NameSelector("store"))
	seg2 := ast.Child(ast.NameSelector("book"))
	seg3 := ast.Child(ast.WildcardSelector())
	seg4 := ast.Child(ast.NameSelector("price"))

	query := ast.NewPathQuery(true, seg1, seg2, seg3, seg4)
	path := &Path{query: query}
	got := path.Select(input)

	assert.Equal(t, nums(8.95, 12.99, 8.99), []value.Value(got))
}

func TestPath_Select_FilterSelector(t *testing.T) {
	input := decode(t, `[{"price": 10}, {"price": 20}]`)

	path := MustParse("$[?@.price > 10]")
	got := path.Select(input)

	require.Len(t, got, 1)
	obj, ok := got[0].AsObject()
	require.True(t, ok)
	price, _ := obj.Get("price")
	f, _ := price.AsFloat64()
	assert.Equal(t, float64(20), f)
}

func BenchmarkSelect_NameSelector(b *testing.B) {
	input, _ := value.Decode([]byte(`{"a": 1, "b": 2, "c": 3}`))
	seg := ast.Child(ast.NameSelector("b"))
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}

	b.ResetTimer()
	for b.Loop() {
		_ = path.Select(input)
	}
}

func BenchmarkSelect_SliceSelector(b *testing.B) {
	vals := make([]value.Value, 100)
	for i := range vals {
		vals[i] = value.Number(float64(i))
	}
	input := value.Array(vals)
	seg := ast.Child(ast.SliceSelector(ast.SliceArgs{
		Start: 10, End: 50, Step: 2,
		HasStart: true, HasEnd: true, HasStep: true,
	}))
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}

	b.ResetTimer()
	for b.Loop() {
		_ = path.Select(input)
	}
}

func BenchmarkSelect_DescendantSelector(b *testing.B) {
	input, _ := value.Decode([]byte(`{"a":1,"b":{"a":2,"c":{"a":3,"d":{"a":4}}}}`))
	seg := ast.Descendant(ast.NameSelector("a"))
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}

	b.ResetTimer()
	for b.Loop() {
		_ = path.Select(input)
	}
}

func BenchmarkSelect_ComplexPath(b *testing.B) {
	input, _ := value.Decode([]byte(`{"store":{"book":[
		{"title":"Book 1","price":10},{"title":"Book 2","price":20},
		{"title":"Book 3","price":30},{"title":"Book 4","price":40},
		{"title":"Book 5","price":50}
	]}}`))

	seg1 := ast.Child(ast.NameSelector("store"))
	seg2 := ast.Child(ast.NameSelector("book"))
	seg3 := ast.Child(ast.WildcardSelector())
	seg4 := ast.Child(ast.NameSelector("price"))

	query := ast.NewPathQuery(true, seg1, seg2, seg3, seg4)
	path := &Path{query: query}

	b.ResetTimer()
	for b.Loop() {
		_ = path.Select(input)
	}
}

func TestPath_SelectLocated_NameSelector(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		selector ast.Selector
		want     []*LocatedNode
	}{
		{
			name:     "select existing key",
			input:    `{"a": 1, "b": 2}`,
			selector: ast.NameSelector("a"),
			want: []*LocatedNode{
				{Value: value.Number(1), Path: NormalizedPath{NameElement("a")}},
			},
		},
		{
			name:     "select missing key",
			input:    `{"a": 1}`,
			selector: ast.NameSelector("b"),
			want:     []*LocatedNode{},
		},
		{
			name:     "select from non-object",
			input:    `[1, 2, 3]`,
			selector: ast.NameSelector("a"),
			want:     []*LocatedNode{},
		},
		{
			name:     "select nested object",
			input:    `{"a": {"b": 42}}`,
			selector: ast.NameSelector("a"),
			want: []*LocatedNode{
				{Value: decode(t, `{"b": 42}`), Path: NormalizedPath{NameElement("a")}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := ast.Child(tt.selector)
			query := ast.NewPathQuery(true, seg)
			path := &Path{query: query}
			got := path.SelectLocated(decode(t, tt.input))
			assert.Equal(t, tt.want, []*LocatedNode(got))
		})
	}
}

func TestPath_SelectLocated_IndexSelector(t *testing.T) {
	input := decode(t, `[10, 20, 30]`)
	seg := ast.Child(ast.IndexSelector(1))
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}
	got := path.SelectLocated(input)

	assert.Equal(t, []*LocatedNode{
		{Value: value.Number(20), Path: NormalizedPath{IndexElement(1)}},
	}, []*LocatedNode(got))
}

func TestPath_SelectLocated_SliceSelector(t *testing.T) {
	input := decode(t, `[0, 1, 2, 3, 4]`)
	seg := ast.Child(ast.SliceSelector(ast.SliceArgs{Start: 1, End: 3, HasStart: true, HasEnd: true}))
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}
	got := path.SelectLocated(input)

	assert.Equal(t, []*LocatedNode{
		{Value: value.Number(1), Path: NormalizedPath{IndexElement(1)}},
		{Value: value.Number(2), Path: NormalizedPath{IndexElement(2)}},
	}, []*LocatedNode(got))
}

func TestPath_SelectLocated_WildcardSelector(t *testing.T) {
	input := decode(t, `{"a": 1, "b": 2}`)
	seg := ast.Child(ast.WildcardSelector())
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}
	got := path.SelectLocated(input)

	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{`$['a']`, `$['b']`}, []string{got[0].Path.String(), got[1].Path.String()})
}

func TestPath_SelectLocated_MultipleSegments(t *testing.T) {
	input := decode(t, `{"store": {"book": [{"title": "Book 1"}]}}`)

	seg1 := ast.Child(ast.NameSelector("store"))
	seg2 := ast.Child(ast.NameSelector("book"))
	seg3 := ast.Child(ast.IndexSelector(0))
	seg4 := ast.Child(ast.NameSelector("title"))

	query := ast.NewPathQuery(true, seg1, seg2, seg3, seg4)
	path := &Path{query: query}
	got := path.SelectLocated(input)

	require.Len(t, got, 1)
	assert.Equal(t, value.String("Book 1"), got[0].Value)
	assert.Equal(t, `$['store']['book'][0]['title']`, got[0].Path.String())
}

func TestPath_SelectLocated_DescendantSelector(t *testing.T) {
	input := decode(t, `{"a": 1, "b": {"a": 2}}`)
	seg := ast.Descendant(ast.NameSelector("a"))
	query := ast.NewPathQuery(true, seg)
	path := &Path{query: query}
	got := path.SelectLocated(input)

	require.Len(t, got, 2)
}

func TestPath_SelectLocated_ComplexPath(t *testing.T) {
	input := decode(t, `{"store": {"book": [{"price": 10}, {"price": 20}]}}`)

	seg1 := ast.Child(ast.NameSelector("store"))
	seg2 := ast.Child(ast.NameSelector("book"))
	seg3 := ast.Child(ast.WildcardSelector())
	seg4 := ast.Child(ast.NameSelector("price"))

	query := ast.NewPathQuery(true, seg1, seg2, seg3, seg4)
	path := &Path{query: query}
	got := path.SelectLocated(input)

	require.Len(t, got, 2)
	assert.Equal(t, `$['store']['book'][0]['price']`, got[0].Path.String())
	assert.Equal(t, `$['store']['book'][1]['price']`, got[1].Path.String())
}

func TestPath_SelectLocated_NilQuery(t *testing.T) {
	path := &Path{query: nil}
	got := path.SelectLocated(decode(t, `{"a": 1}`))
	assert.Nil(t, got)
}

func TestLocatedNodeList_Methods(t *testing.T) {
	list := LocatedNodeList{
		{Value: value.Number(1), Path: NormalizedPath{NameElement("a")}},
		{Value: value.Number(2), Path: NormalizedPath{NameElement("b")}},
		{Value: value.Number(3), Path: NormalizedPath{IndexElement(0)}},
	}

	t.Run("Values", func(t *testing.T) {
		values := make([]value.Value, 0, len(list))
		for v := range list.Values() {
			values = append(values, v)
		}
		assert.Equal(t, nums(1, 2, 3), values)
	})

	t.Run("Paths", func(t *testing.T) {
		paths := make([]string, 0, len(list))
		for p := range list.Paths() {
			paths = append(paths, p.String())
		}
		assert.Equal(t, []string{"$['a']", "$['b']", "$[0]"}, paths)
	})

	t.Run("All", func(t *testing.T) {
		nodes := make([]*LocatedNode, 0, len(list))
		for n := range list.All() {
			nodes = append(nodes, n)
		}
		assert.Equal(t, []*LocatedNode(list), nodes)
	})
}

func TestLocatedNodeList_Deduplicate(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		list LocatedNodeList
		exp  LocatedNodeList
	}{
		{
			name: "empty",
			list: LocatedNodeList{},
			exp:  LocatedNodeList{},
		},
		{
			name: "single",
			list: LocatedNodeList{
				{Value: value.String("a"), Path: NormalizedPath{NameElement("x")}},
			},
			exp: LocatedNodeList{
				{Value: value.String("a"), Path: NormalizedPath{NameElement("x")}},
			},
		},
		{
			name: "no_duplicates",
			list: LocatedNodeList{
				{Value: value.String("a"), Path: NormalizedPath{NameElement("x")}},
				{Value: value.String("b"), Path: NormalizedPath{NameElement("y")}},
				{Value: value.String("c"), Path: NormalizedPath{IndexElement(0)}},
			},
			exp: LocatedNodeList{
				{Value: value.String("a"), Path: NormalizedPath{NameElement("x")}},
				{Value: value.String("b"), Path: NormalizedPath{NameElement("y")}},
				{Value: value.String("c"), Path: NormalizedPath{IndexElement(0)}},
			},
		},
		{
			name: "duplicates_same_value",
			list: LocatedNodeList{
				{Value: value.String("a"), Path: NormalizedPath{NameElement("x")}},
				{Value: value.String("a"), Path: NormalizedPath{NameElement("x")}},
				{Value: value.String("b"), Path: NormalizedPath{NameElement("y")}},
			},
			exp: LocatedNodeList{
				{Value: value.String("a"), Path: NormalizedPath{NameElement("x")}},
				{Value: value.String("b"), Path: NormalizedPath{NameElement("y")}},
			},
		},
		{
			name: "multiple_duplicates",
			list: LocatedNodeList{
				{Value: value.String("a"), Path: NormalizedPath{NameElement("x")}},
				{Value: value.String("b"), Path: NormalizedPath{NameElement("y")}},
				{Value: value.String("c"), Path: NormalizedPath{NameElement("x")}},
				{Value: value.String("d"), Path: NormalizedPath{NameElement("z")}},
				{Value: value.String("e"), Path: NormalizedPath{NameElement("y")}},
			},
			exp: LocatedNodeList{
				{Value: value.String("a"), Path: NormalizedPath{NameElement("x")}},
				{Value: value.String("b"), Path: NormalizedPath{NameElement("y")}},
				{Value: value.String("d"), Path: NormalizedPath{NameElement("z")}},
			},
		},
		{
			name: "nested_paths",
			list: LocatedNodeList{
				{Value: value.Number(1), Path: NormalizedPath{NameElement("a"), IndexElement(0)}},
				{Value: value.Number(2), Path: NormalizedPath{NameElement("a"), IndexElement(1)}},
				{Value: value.Number(3), Path: NormalizedPath{NameElement("a"), IndexElement(0)}},
			},
			exp: LocatedNodeList{
				{Value: value.Number(1), Path: NormalizedPath{NameElement("a"), IndexElement(0)}},
				{Value: value.Number(2), Path: NormalizedPath{NameElement("a"), IndexElement(1)}},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			got := tc.list.Deduplicate()
			a.Equal(len(tc.exp), len(got))
			for i := range tc.exp {
				a.Equal(tc.exp[i].Value, got[i].Value)
				a.Equal(tc.exp[i].Path, got[i].Path)
			}
		})
	}
}

func TestLocatedNodeList_Sort(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		list LocatedNodeList
		exp  LocatedNodeList
	}{
		{
			name: "empty",
			list: LocatedNodeList{},
			exp:  LocatedNodeList{},
		},
		{
			name: "reverse_order",
			list: LocatedNodeList{
				{Value: value.String("c"), Path: NormalizedPath{NameElement("c")}},
				{Value: value.String("b"), Path: NormalizedPath{NameElement("b")}},
				{Value: value.String("a"), Path: NormalizedPath{NameElement("a")}},
			},
			exp: LocatedNodeList{
				{Value: value.String("a"), Path: NormalizedPath{NameElement("a")}},
				{Value: value.String("b"), Path: NormalizedPath{NameElement("b")}},
				{Value: value.String("c"), Path: NormalizedPath{NameElement("c")}},
			},
		},
		{
			name: "indexes_before_names",
			list: LocatedNodeList{
				{Value: value.String("name"), Path: NormalizedPath{NameElement("x")}},
				{Value: value.String("index"), Path: NormalizedPath{IndexElement(0)}},
			},
			exp: LocatedNodeList{
				{Value: value.String("index"), Path: NormalizedPath{IndexElement(0)}},
				{Value: value.String("name"), Path: NormalizedPath{NameElement("x")}},
			},
		},
		{
			name: "nested_paths",
			list: LocatedNodeList{
				{Value: value.Number(3), Path: NormalizedPath{NameElement("b"), IndexElement(0)}},
				{Value: value.Number(1), Path: NormalizedPath{NameElement("a"), IndexElement(0)}},
				{Value: value.Number(4), Path: NormalizedPath{NameElement("b"), IndexElement(1)}},
				{Value: value.Number(2), Path: NormalizedPath{NameElement("a"), IndexElement(1)}},
			},
			exp: LocatedNodeList{
				{Value: value.Number(1), Path: NormalizedPath{NameElement("a"), IndexElement(0)}},
				{Value: value.Number(2), Path: NormalizedPath{NameElement("a"), IndexElement(1)}},
				{Value: value.Number(3), Path: NormalizedPath{NameElement("b"), IndexElement(0)}},
				{Value: value.Number(4), Path: NormalizedPath{NameElement("b"), IndexElement(1)}},
			},
		},
		{
			name: "different_lengths",
			list: LocatedNodeList{
				{Value: value.String("long"), Path: NormalizedPath{NameElement("a"), NameElement("b"), IndexElement(0)}},
				{Value: value.String("short"), Path: NormalizedPath{NameElement("a")}},
				{Value: value.String("medium"), Path: NormalizedPath{NameElement("a"), NameElement("b")}},
			},
			exp: LocatedNodeList{
				{Value: value.String("short"), Path: NormalizedPath{NameElement("a")}},
				{Value: value.String("medium"), Path: NormalizedPath{NameElement("a"), NameElement("b")}},
				{Value: value.String("long"), Path: NormalizedPath{NameElement("a"), NameElement("b"), IndexElement(0)}},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			list := make(LocatedNodeList, len(tc.list))
			copy(list, tc.list)

			list.Sort()
			a.Equal(len(tc.exp), len(list))
			for i := range tc.exp {
				a.Equal(tc.exp[i].Value, list[i].Value)
				a.Equal(tc.exp[i].Path, list[i].Path)
			}
		})
	}
}

func BenchmarkSelectLocated_ComplexPath(b *testing.B) {
	input, _ := value.Decode([]byte(`{"store":{"book":[
		{"title":"Book 1","price":10},{"title":"Book 2","price":20},
		{"title":"Book 3","price":30}
	]}}`))

	seg1 := ast.Child(ast.NameSelector("store"))
	seg2 := ast.Child(ast.NameSelector("book"))
	seg3 := ast.Child(ast.WildcardSelector())
	seg4 := ast.Child(ast.NameSelector("price"))

	query := ast.NewPathQuery(true, seg1, seg2, seg3, seg4)
	path := &Path{query: query}

	b.ResetTimer()
	for b.Loop() {
		_ = path.SelectLocated(input)
	}
}

func TestQueryJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		path    string
		want    []value.Value
		wantErr bool
	}{
		{
			name: "simple name selector",
			json: `{"a": 1, "b": 2}`,
			path: "$.a",
			want: nums(1),
		},
		{
			name: "array index selector",
			json: `[10, 20, 30]`,
			path: "$[1]",
			want: nums(20),
		},
		{
			name: "nested path",
			json: `{"store": {"book": [{"title": "Book 1", "price": 8.95}]}}`,
			path: "$.store.book[0].title",
			want: []value.Value{value.String("Book 1")},
		},
		{
			name: "wildcard selector",
			json: `{"a": 1, "b": 2, "c": 3}`,
			path: "$[*]",
			want: nums(1, 2, 3),
		},
		{
			name:    "invalid json",
			json:    `{invalid}`,
			path:    "$.a",
			wantErr: true,
		},
		{
			name: "empty result",
			json: `{"a": 1}`,
			path: "$.b",
			want: []value.Value{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := MustParse(tt.path)
			got, err := QueryJSON([]byte(tt.json), path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.path == "$[*]" {
				assert.ElementsMatch(t, tt.want, []value.Value(got))
			} else {
				assert.Equal(t, tt.want, []value.Value(got))
			}
		})
	}
}

func TestQueryJSONLocated(t *testing.T) {
	t.Run("simple name selector", func(t *testing.T) {
		path := MustParse("$.a")
		got, err := QueryJSONLocated([]byte(`{"a": 1, "b": 2}`), path)
		require.NoError(t, err)
		assert.Equal(t, []*LocatedNode{
			{Value: value.Number(1), Path: NormalizedPath{NameElement("a")}},
		}, []*LocatedNode(got))
	})

	t.Run("multiple results", func(t *testing.T) {
		path := MustParse("$.store.book[*].price")
		got, err := QueryJSONLocated([]byte(`{"store": {"book": [{"price": 8.95}, {"price": 12.99}]}}`), path)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, `$['store']['book'][0]['price']`, got[0].Path.String())
		assert.Equal(t, `$['store']['book'][1]['price']`, got[1].Path.String())
	})

	t.Run("invalid json", func(t *testing.T) {
		path := MustParse("$.a")
		_, err := QueryJSONLocated([]byte(`{invalid}`), path)
		require.Error(t, err)
	})

	t.Run("empty result", func(t *testing.T) {
		path := MustParse("$.b")
		got, err := QueryJSONLocated([]byte(`{"a": 1}`), path)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestQueryJSON_ComplexDocument(t *testing.T) {
	jsonDoc := `{
		"store": {
			"book": [
				{"category": "reference", "author": "Nigel Rees", "title": "Sayings of the Century", "price": 8.95},
				{"category": "fiction", "author": "Evelyn Waugh", "title": "Sword of Honour", "price": 12.99},
				{"category": "fiction", "author": "Herman Melville", "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99}
			],
			"bicycle": {"color": "red", "price": 19.95}
		}
	}`

	t.Run("all book prices", func(t *testing.T) {
		path := MustParse("$.store.book[*].price")
		got, err := QueryJSON([]byte(jsonDoc), path)
		require.NoError(t, err)
		assert.Equal(t, nums(8.95, 12.99, 8.99), []value.Value(got))
	})

	t.Run("all authors", func(t *testing.T) {
		path := MustParse("$.store.book[*].author")
		got, err := QueryJSON([]byte(jsonDoc), path)
		require.NoError(t, err)
		assert.Equal(t, []value.Value{
			value.String("Nigel Rees"), value.String("Evelyn Waugh"), value.String("Herman Melville"),
		}, []value.Value(got))
	})

	t.Run("first book", func(t *testing.T) {
		path := MustParse("$.store.book[0]")
		got, err := QueryJSON([]byte(jsonDoc), path)
		require.NoError(t, err)
		require.Len(t, got, 1)
		obj, ok := got[0].AsObject()
		require.True(t, ok)
		title, _ := obj.Get("title")
		s, _ := title.AsString()
		assert.Equal(t, "Sayings of the Century", s)
	})

	t.Run("expensive books via filter", func(t *testing.T) {
		path := MustParse("$.store.book[?@.price > 10]")
		got, err := QueryJSON([]byte(jsonDoc), path)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func BenchmarkQueryJSON(b *testing.B) {
	jsonDoc := []byte(`{"store": {"book": [{"title": "Book 1", "price": 10}, {"title": "Book 2", "price": 20}]}}`)
	path := MustParse("$.store.book[*].price")

	b.ResetTimer()
	for b.Loop() {
		_, _ = QueryJSON(jsonDoc, path)
	}
}

func BenchmarkQueryJSONLocated(b *testing.B) {
	jsonDoc := []byte(`{"store": {"book": [{"title": "Book 1", "price": 10}, {"title": "Book 2", "price": 20}]}}`)
	path := MustParse("$.store.book[*].price")

	b.ResetTimer()
	for b.Loop() {
		_, _ = QueryJSONLocated(jsonDoc, path)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		valid bool
	}{
		{name: "valid simple path", expr: "$.store.book", valid: true},
		{name: "valid array index", expr: "$[0]", valid: true},
		{name: "valid wildcard", expr: "$[*]", valid: true},
		{name: "valid slice", expr: "$[0:5:2]", valid: true},
		{name: "valid descendant", expr: "$..book", valid: true},
		{name: "invalid missing root", expr: "store.book", valid: false},
		{name: "invalid syntax", expr: "$[", valid: false},
		{name: "invalid empty", expr: "", valid: false},
		{name: "valid complex path", expr: "$.store.book[*].author", valid: true},
		{name: "valid filter", expr: "$.store.book[?@.price < 10]", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Valid(tt.expr)
			assert.Equal(t, tt.valid, got)
		})
	}
}

func TestQueryJSON_ErrUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "invalid json syntax", json: `{invalid}`},
		{name: "unclosed object", json: `{"a": 1`},
		{name: "unclosed array", json: `[1, 2, 3`},
		{name: "trailing comma", json: `{"a": 1,}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := MustParse("$.a")
			_, err := QueryJSON([]byte(tt.json), path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnmarshal)
		})
	}
}

func TestQueryJSONLocated_ErrUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "invalid json syntax", json: `{invalid}`},
		{name: "unclosed object", json: `{"a": 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := MustParse("$.a")
			_, err := QueryJSONLocated([]byte(tt.json), path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnmarshal)
		})
	}
}

// TestSelect_Bookstore runs a bookstore document through the selector and
// filter machinery end to end.
func TestSelect_Bookstore(t *testing.T) {
	books := decode(t, `{"store":{"book":[
		{"cat":"ref","author":"A","price":8.95,"title":"Sayings"},
		{"cat":"fic","author":"B","price":12.99,"title":"Moby"},
		{"cat":"fic","author":"C","price":8.99,"title":"Lord","isbn":"0-553"}
	]}}`)

	titles := func(got NodeList) []string {
		out := make([]string, 0, len(got))
		for _, v := range got {
			obj, ok := v.AsObject()
			if !ok {
				continue
			}
			tv, _ := obj.Get("title")
			s, _ := tv.AsString()
			out = append(out, s)
		}
		return out
	}

	t.Run("first author", func(t *testing.T) {
		got := MustParse("$.store.book[0].author").Select(books)
		assert.Equal(t, []value.Value{value.String("A")}, []value.Value(got))
	})

	t.Run("last title via negative index", func(t *testing.T) {
		got := MustParse("$.store.book[-1].title").Select(books)
		assert.Equal(t, []value.Value{value.String("Lord")}, []value.Value(got))
	})

	t.Run("descendant author in document order", func(t *testing.T) {
		got := MustParse("$..author").Select(books)
		assert.Equal(t, []value.Value{
			value.String("A"), value.String("B"), value.String("C"),
		}, []value.Value(got))
	})

	t.Run("price filter", func(t *testing.T) {
		got := MustParse("$.store.book[?@.price < 10]").Select(books)
		assert.Equal(t, []string{"Sayings", "Lord"}, titles(got))
	})

	t.Run("existence filter", func(t *testing.T) {
		got := MustParse("$.store.book[?@.isbn]").Select(books)
		assert.Equal(t, []string{"Lord"}, titles(got))
	})

	t.Run("length filter", func(t *testing.T) {
		got := MustParse("$.store.book[?length(@.title) > 4]").Select(books)
		assert.Equal(t, []string{"Sayings"}, titles(got))
	})
}

// TestSelect_NullVsMissing distinguishes a member holding JSON null from a
// member that is not present at all.
func TestSelect_NullVsMissing(t *testing.T) {
	doc := decode(t, `[{"a":null},{"a":1},{"b":2}]`)

	t.Run("existence selects present null", func(t *testing.T) {
		got := MustParse("$[?@.a]").Select(doc)
		require.Len(t, got, 2)
		assert.True(t, value.Equal(got[0], decode(t, `{"a":null}`)))
		assert.True(t, value.Equal(got[1], decode(t, `{"a":1}`)))
	})

	t.Run("equals null selects only present null", func(t *testing.T) {
		got := MustParse("$[?@.a == null]").Select(doc)
		require.Len(t, got, 1)
		assert.True(t, value.Equal(got[0], decode(t, `{"a":null}`)))
	})

	t.Run("not equals null selects non-null and missing", func(t *testing.T) {
		got := MustParse("$[?@.a != null]").Select(doc)
		require.Len(t, got, 2)
		assert.True(t, value.Equal(got[0], decode(t, `{"a":1}`)))
		assert.True(t, value.Equal(got[1], decode(t, `{"b":2}`)))
	})
}

func TestSelect_ReverseSlice(t *testing.T) {
	doc := decode(t, `[1,2,3]`)
	got := MustParse("$[::-1]").Select(doc)
	assert.Equal(t, nums(3, 2, 1), []value.Value(got))

	// $[::1] is equivalent to $[*] on arrays.
	assert.Equal(t,
		[]value.Value(MustParse("$[*]").Select(doc)),
		[]value.Value(MustParse("$[::1]").Select(doc)))
}

// TestSelect_LengthCountsScalars verifies length() counts Unicode scalar
// values rather than bytes.
func TestSelect_LengthCountsScalars(t *testing.T) {
	doc := decode(t, `[{"s":"é"},{"s":"😀"},{"s":"ab"}]`)
	got := MustParse("$[?length(@.s) == 1]").Select(doc)
	require.Len(t, got, 2)
}

// TestParse_Rejections lists queries that must fail to parse: whitespace
// violations, non-singular comparison operands, function misuse, and
// malformed indices.
func TestParse_Rejections(t *testing.T) {
	for _, expr := range []string{
		" $",
		"$ ",
		"$. foo",
		"$..  foo",
		"$[? length (@)>0]",
		"$[?@[*] == 1]",
		"$[?@.a == @.b[*]]",
		`$[?match(@.x,"a") == true]`,
		"$[?count(@.x)]",
		"$[?42]",
		"$[?1 && @.a]",
		"$[?unknown(@)]",
		"$[01]",
		"$[-0]",
		"$[1.5]",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			assert.Error(t, err)
			assert.ErrorIs(t, err, ErrPathParse)
		})
	}
}

// TestSelect_DeeplyNestedDescendant exercises the work-stack descendant
// traversal on a document far deeper than comfortable recursion depth.
func TestSelect_DeeplyNestedDescendant(t *testing.T) {
	const depth = 100_000
	v := value.Number(1)
	for range depth {
		v = value.Array([]value.Value{v})
	}

	got := MustParse("$..*").Select(v)
	assert.Len(t, got, depth)

	// Pre-order: the innermost scalar comes last.
	f, ok := got[len(got)-1].AsFloat64()
	require.True(t, ok)
	assert.Equal(t, float64(1), f)
}

// TestSelect_HugeNumberLiteral verifies that a number literal too large for
// IEEE-754 parses but evaluates as null rather than failing.
func TestSelect_HugeNumberLiteral(t *testing.T) {
	doc := decode(t, `[{"a":null},{"a":1}]`)
	got := MustParse("$[?@.a == 1e400]").Select(doc)
	require.Len(t, got, 1)
	assert.True(t, value.Equal(got[0], decode(t, `{"a":null}`)))
}
