package query

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/redisgraphio/pkg/graph"
)

// =============================================================================
// Build Tests
// =============================================================================

func TestBuild_RiderExample(t *testing.T) {
	q := New("MATCH (r:Rider)-[:rides]->(:Team {name:$team}) RETURN r").Set("team", "Yamaha")

	got, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (r:Rider)-[:rides]->(:Team {name:'Yamaha'}) RETURN r", got)
}

func TestBuild_NoParamsIsVerbatim(t *testing.T) {
	tmpl := "MATCH (n) WHERE n.name = $missing RETURN n"
	got, err := New(tmpl).Build()
	require.NoError(t, err)
	assert.Equal(t, tmpl, got)

	got, err = New(tmpl).WithParams(nil).Build()
	require.NoError(t, err)
	assert.Equal(t, tmpl, got)
}

func TestBuild_MissingParameter(t *testing.T) {
	q := New("MATCH (n) WHERE n.name = $missing RETURN n").WithParams(Params{})

	_, err := q.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingParameter)

	var mpe *MissingParameterError
	require.True(t, errors.As(err, &mpe))
	assert.Equal(t, "missing", mpe.Name)
	assert.Equal(t, 25, mpe.Offset)

	_, _, err = q.Command("g")
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestBuild_Substitution(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		params Params
		want   string
	}{
		{
			name:   "several placeholders",
			tmpl:   "CREATE (:Rider {name: $name, wins: $wins, active: $active})",
			params: Params{"name": "Marc", "wins": 59, "active": true},
			want:   "CREATE (:Rider {name: 'Marc', wins: 59, active: true})",
		},
		{
			name:   "repeated placeholder",
			tmpl:   "RETURN $x + $x",
			params: Params{"x": 2},
			want:   "RETURN 2 + 2",
		},
		{
			name:   "longest name wins",
			tmpl:   "RETURN $ab, $a",
			params: Params{"a": 1, "ab": 2},
			want:   "RETURN 2, 1",
		},
		{
			name:   "inside single quotes untouched",
			tmpl:   "RETURN '$x', $x",
			params: Params{"x": 1},
			want:   "RETURN '$x', 1",
		},
		{
			name:   "inside double quotes with escaped quote",
			tmpl:   `RETURN "a\"$x", $x`,
			params: Params{"x": 1},
			want:   `RETURN "a\"$x", 1`,
		},
		{
			name:   "inside backticks untouched",
			tmpl:   "MATCH (n) RETURN n.`$x` AS `a``$x`, $x",
			params: Params{"x": 1},
			want:   "MATCH (n) RETURN n.`$x` AS `a``$x`, 1",
		},
		{
			name:   "comments untouched",
			tmpl:   "RETURN $x // $y\n/* $z */ + 1",
			params: Params{"x": 1},
			want:   "RETURN 1 // $y\n/* $z */ + 1",
		},
		{
			name:   "dollar without name",
			tmpl:   "RETURN '$', $1, $x$",
			params: Params{"x": "a"},
			want:   "RETURN '$', $1, 'a'$",
		},
		{
			name:   "null and list",
			tmpl:   "RETURN $n, $l",
			params: Params{"n": nil, "l": []string{"a", "b"}},
			want:   "RETURN null, ['a', 'b']",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.tmpl).WithParams(tt.params).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_InjectionAttempt(t *testing.T) {
	evil := "x'}) DETACH DELETE n //"
	got, err := New("MATCH (n {name: $name}) RETURN n").Set("name", evil).Build()
	require.NoError(t, err)
	assert.Equal(t, `MATCH (n {name: 'x\'}) DETACH DELETE n //'}) RETURN n`, got)

	// the whole value is still one literal
	assert.Equal(t, []string(nil), Placeholders(got))
	lit, err := ParseLiteral(got[len("MATCH (n {name: ") : len(got)-len("}) RETURN n")])
	require.NoError(t, err)
	assert.Equal(t, evil, lit)
}

func TestBuild_UnsupportedParameterNamed(t *testing.T) {
	_, err := New("RETURN $v").Set("v", struct{}{}).Build()
	assert.ErrorIs(t, err, ErrUnsupportedParameter)

	var upe *UnsupportedParameterError
	require.True(t, errors.As(err, &upe))
	assert.Equal(t, "v", upe.Name)
}

func TestCommand(t *testing.T) {
	q := New("MATCH (n) RETURN n")

	cmd, args, err := q.Command("motogp")
	require.NoError(t, err)
	assert.Equal(t, CmdQuery, cmd)
	assert.Equal(t, []interface{}{"motogp", "MATCH (n) RETURN n", "--compact"}, args)

	cmd, _, err = q.ReadOnly(true).Command("motogp")
	require.NoError(t, err)
	assert.Equal(t, CmdROQuery, cmd)
	assert.True(t, q.IsReadOnly())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, Placeholders("RETURN $b, '$c', $a, $b"))
}

func TestWithParamsCopies(t *testing.T) {
	p := Params{"x": 1}
	q := New("RETURN $x").WithParams(p)
	p["x"] = 2

	got, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, "RETURN 1", got)
}

// =============================================================================
// Literal Tests
// =============================================================================

func TestLiteral(t *testing.T) {
	str := "ptr"
	var nilPtr *int

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, "null"},
		{"true", true, "true"},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint8", uint8(200), "200"},
		{"float whole", 3.0, "3.0"},
		{"float fraction", 0.25, "0.25"},
		{"float32", float32(0.5), "0.5"},
		{"float large", 1e21, "1e21"},
		{"float small", 1e-7, "1e-07"},
		{"string", "Yamaha", "'Yamaha'"},
		{"empty string", "", "''"},
		{"quote", "it's", `'it\'s'`},
		{"backslash", `a\b`, `'a\\b'`},
		{"control chars", "a\nb\rc\td", `'a\nb\rc\td'`},
		{"unicode untouched", "Márquez 🏍", "'Márquez 🏍'"},
		{"double quote untouched", `say "hi"`, `'say "hi"'`},
		{"bytes", []byte("x"), "'x'"},
		{"list", []interface{}{1, "a", nil, []int{2}}, "[1, 'a', null, [2]]"},
		{"empty list", []string{}, "[]"},
		{"map sorted", map[string]interface{}{"b": 1, "a": "x"}, "{a: 'x', b: 1}"},
		{"typed map", map[string]int{"z": 1}, "{z: 1}"},
		{"ordered map", OrderedMap{{"b", 1}, {"a", 2}}, "{b: 1, a: 2}"},
		{"quoted key", OrderedMap{{"first name", "x"}, {"a`b", 1}, {"1st", 2}}, "{`first name`: 'x', `a``b`: 1, `1st`: 2}"},
		{"pointer", &str, "'ptr'"},
		{"nil pointer", nilPtr, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Literal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteral_GraphValues(t *testing.T) {
	m, err := graph.MapFromPairs(
		graph.Pair{Key: "lat", Value: graph.DoubleValue(1.5)},
		graph.Pair{Key: "tags", Value: graph.ArrayValue([]graph.Value{graph.StringValue("a"), graph.NullValue()})},
	)
	require.NoError(t, err)

	got, err := Literal(graph.MapValue(m))
	require.NoError(t, err)
	assert.Equal(t, "{lat: 1.5, tags: ['a', null]}", got)

	got, err = Literal(graph.PointValue(graph.Point{Latitude: 32.5, Longitude: 34}))
	require.NoError(t, err)
	assert.Equal(t, "point({latitude: 32.5, longitude: 34.0})", got)

	got, err = Literal([]interface{}{graph.IntValue(1), graph.BoolValue(false)})
	require.NoError(t, err)
	assert.Equal(t, "[1, false]", got)

	_, err = Literal(graph.NodeValue(graph.NewNode(1, nil, graph.Map{})))
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestLiteral_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf float32", float32(math.Inf(-1))},
		{"nested NaN", []float64{1, math.NaN()}},
		{"uint64 overflow", uint64(math.MaxUint64)},
		{"struct", struct{ A int }{1}},
		{"channel", make(chan int)},
		{"int keyed map", map[int]string{1: "a"}},
		{"func", func() {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Literal(tt.value)
			assert.ErrorIs(t, err, ErrUnsupportedParameter)
		})
	}
}

type (
	team     string
	laps     int
	grid     uint8
	lapTime  float64
	retired  bool
	bigCount uint64
)

func TestLiteral_NamedScalarTypes(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", team("it's Yamaha"), `'it\'s Yamaha'`},
		{"int", laps(-27), "-27"},
		{"uint8", grid(3), "3"},
		{"float", lapTime(98.5), "98.5"},
		{"whole float", lapTime(100), "100.0"},
		{"bool", retired(true), "true"},
		{"in slice", []team{"Ducati", "KTM"}, "['Ducati', 'KTM']"},
		{"in map", map[string]laps{"sprint": 13}, "{sprint: 13}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Literal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := New("MATCH (t:Team {name: $team}) RETURN t").Set("team", team("Honda")).Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (t:Team {name: 'Honda'}) RETURN t", got)

	_, err = Literal(bigCount(math.MaxUint64))
	assert.ErrorIs(t, err, ErrUnsupportedParameter)

	_, err = Literal(lapTime(math.Inf(1)))
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
	assert.ErrorContains(t, err, "query.lapTime")
}

// =============================================================================
// ParseLiteral Tests
// =============================================================================

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{"null", nil},
		{"NULL", nil},
		{"true", true},
		{"False", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.0", 3.0},
		{"-0.5", -0.5},
		{"1e21", 1e21},
		{"1e-07", 1e-7},
		{"'it\\'s'", "it's"},
		{`"double"`, "double"},
		{`'a\nb'`, "a\nb"},
		{" [1, 'a', [ ] ] ", []interface{}{int64(1), "a", []interface{}{}}},
		{"{b: 1, `a b`: 'x'}", OrderedMap{{"b", int64(1)}, {"a b", "x"}}},
		{"{}", OrderedMap{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLiteral(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLiteral_Errors(t *testing.T) {
	for _, in := range []string{
		"", "nope", "'open", "[1, 2", "{a 1}", "{a: 1, a: 2}", "1 2", "-", "1e",
		"'bad \\q escape'", "99999999999999999999", "{`open: 1}", "[1,]",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLiteral(in)
			assert.ErrorIs(t, err, ErrInvalidLiteral)
		})
	}
}

// roundTripValues are literals whose parse must give back the same value.
var roundTripValues = []interface{}{
	nil,
	true,
	int64(0),
	int64(math.MinInt64),
	int64(math.MaxInt64),
	0.1,
	-2.5e-300,
	1e100,
	123456789.0,
	"",
	"plain",
	"quote ' and backslash \\ and \"double\"",
	"line\nbreak\r\ttab",
	"ünïcödé",
	[]interface{}{int64(1), "two", 3.5, nil, []interface{}{}},
	OrderedMap{{"z", int64(1)}, {"a", OrderedMap{{"nested key", "v"}}}},
}

func assertRoundTrip(t *testing.T, v interface{}) {
	t.Helper()
	lit, err := Literal(v)
	require.NoError(t, err)

	parsed, err := ParseLiteral(lit)
	require.NoError(t, err, "literal %s", lit)
	assert.Equal(t, v, parsed, "literal %s", lit)

	again, err := Literal(parsed)
	require.NoError(t, err)
	assert.Equal(t, lit, again)
}

func TestLiteral_RoundTrip(t *testing.T) {
	for _, v := range roundTripValues {
		assertRoundTrip(t, v)
	}
}

func FuzzLiteralRoundTrip(f *testing.F) {
	for _, v := range roundTripValues {
		switch val := v.(type) {
		case string:
			f.Add(val, "key", int64(0), 0.0)
		case int64:
			f.Add("", "n", val, 1.5)
		case float64:
			f.Add("x", "`tick`", int64(-1), val)
		}
	}
	f.Add("it's a \\ \"trap\"\n", "nested key", int64(46), -0.5)
	f.Add("\x00\xff", "", int64(math.MinInt64), 1e21)

	f.Fuzz(func(t *testing.T, s, key string, n int64, x float64) {
		assertRoundTrip(t, s)
		assertRoundTrip(t, n)
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			assertRoundTrip(t, x)
		}

		other := key + "_"
		list := []interface{}{s, n, []interface{}{key, nil}}
		m := OrderedMap{
			{Key: key, Value: list},
			{Key: other, Value: OrderedMap{{Key: s, Value: n}}},
		}
		assertRoundTrip(t, list)
		assertRoundTrip(t, m)
		assertRoundTrip(t, []interface{}{m, OrderedMap{}, []interface{}{}})
	})
}
