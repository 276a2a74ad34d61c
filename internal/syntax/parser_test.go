package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func parseModule(t *testing.T, src string) *Module {
	t.Helper()
	mod, _, diags := Parse("test.jenkinsfile", []byte(src))
	require.False(t, diags.HasErrors(), "unexpected parse errors: %s", diags.Error())
	require.NotNil(t, mod)
	return mod
}

func soleCall(t *testing.T, mod *Module) *MethodCall {
	t.Helper()
	require.Len(t, mod.Stmts, 1)
	es, ok := mod.Stmts[0].(*ExprStmt)
	require.True(t, ok, "expected an expression statement")
	call, ok := es.X.(*MethodCall)
	require.True(t, ok, "expected a method call")
	return call
}

func TestParseCommandFormCall(t *testing.T) {
	call := soleCall(t, parseModule(t, "echo 'hello'"))
	assert.Equal(t, "echo", call.Name)
	require.Len(t, call.Args, 1)
	lit, ok := call.Args[0].Value.(*Literal)
	require.True(t, ok)
	assert.Equal(t, cty.StringVal("hello"), lit.Value)
}

func TestParseParenCallWithNamedArgs(t *testing.T) {
	call := soleCall(t, parseModule(t, "timeout(time: 5, unit: 'MINUTES')"))
	assert.Equal(t, "timeout", call.Name)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "time", call.Args[0].Name)
	assert.Equal(t, "unit", call.Args[1].Name)

	num, ok := call.Args[0].Value.(*Literal)
	require.True(t, ok)
	assert.Equal(t, cty.NumberIntVal(5), num.Value)
}

func TestParseTrailingClosure(t *testing.T) {
	testCases := []struct {
		name         string
		src          string
		expectedRest int
	}{
		{name: "block only", src: "steps {\n  echo 'hi'\n}", expectedRest: 0},
		{name: "args then block", src: "retry(3) {\n  sh 'make'\n}", expectedRest: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			call := soleCall(t, parseModule(t, tc.src))
			cl, rest := call.TrailingClosure()
			require.NotNil(t, cl)
			assert.Len(t, rest, tc.expectedRest)
			assert.Len(t, cl.Stmts, 1)
		})
	}
}

func TestParseAssignment(t *testing.T) {
	mod := parseModule(t, "FOO = 'bar'")
	require.Len(t, mod.Stmts, 1)
	as, ok := mod.Stmts[0].(*Assign)
	require.True(t, ok)
	assert.Equal(t, "FOO", as.Name)
	lit, ok := as.Value.(*Literal)
	require.True(t, ok)
	assert.Equal(t, cty.StringVal("bar"), lit.Value)
}

func TestParseMapAndListLiterals(t *testing.T) {
	t.Run("map literal", func(t *testing.T) {
		call := soleCall(t, parseModule(t, "step([$class: 'Mailer', recipients: 'a@b.c'])"))
		require.Len(t, call.Args, 1)
		m, ok := call.Args[0].Value.(*MapLit)
		require.True(t, ok)
		assert.Len(t, m.Entries, 2)
		assert.True(t, m.HasKey("$class"))
		assert.False(t, m.HasKey("recipients2"))
	})

	t.Run("empty map", func(t *testing.T) {
		call := soleCall(t, parseModule(t, "step([:])"))
		require.Len(t, call.Args, 1)
		m, ok := call.Args[0].Value.(*MapLit)
		require.True(t, ok)
		assert.Empty(t, m.Entries)
	})

	t.Run("list literal", func(t *testing.T) {
		call := soleCall(t, parseModule(t, "choices(['a', 'b', 'c'])"))
		require.Len(t, call.Args, 1)
		l, ok := call.Args[0].Value.(*ListLit)
		require.True(t, ok)
		assert.Len(t, l.Elems, 3)
	})
}

func TestParseInterpolation(t *testing.T) {
	t.Run("unescaped dollar interpolates", func(t *testing.T) {
		call := soleCall(t, parseModule(t, `echo "hello ${env.USER}"`))
		require.Len(t, call.Args, 1)
		in, ok := call.Args[0].Value.(*InterpolatedString)
		require.True(t, ok)
		assert.Equal(t, `"hello ${env.USER}"`, in.Raw)
	})

	t.Run("escaped dollar stays literal", func(t *testing.T) {
		call := soleCall(t, parseModule(t, `echo "cost \$5"`))
		require.Len(t, call.Args, 1)
		lit, ok := call.Args[0].Value.(*Literal)
		require.True(t, ok)
		assert.Equal(t, cty.StringVal("cost $5"), lit.Value)
	})

	t.Run("plain double quotes stay literal", func(t *testing.T) {
		call := soleCall(t, parseModule(t, `echo "plain"`))
		require.Len(t, call.Args, 1)
		_, ok := call.Args[0].Value.(*Literal)
		assert.True(t, ok)
	})
}

func TestParseBareIdentArgument(t *testing.T) {
	call := soleCall(t, parseModule(t, "agent any"))
	require.Len(t, call.Args, 1)
	ref, ok := call.Args[0].Value.(*VarRef)
	require.True(t, ok)
	assert.Equal(t, "any", ref.Name)
}

func TestParseNegativeNumber(t *testing.T) {
	call := soleCall(t, parseModule(t, "priority(-1)"))
	require.Len(t, call.Args, 1)
	lit, ok := call.Args[0].Value.(*Literal)
	require.True(t, ok)
	assert.Equal(t, cty.NumberIntVal(-1), lit.Value)
}

func TestParseRecoversAfterBadStatement(t *testing.T) {
	src := ":::\necho 'still here'"
	mod, _, diags := Parse("test.jenkinsfile", []byte(src))
	require.True(t, diags.HasErrors())
	require.NotNil(t, mod)
	require.Len(t, mod.Stmts, 1)

	es, ok := mod.Stmts[0].(*ExprStmt)
	require.True(t, ok)
	call, ok := es.X.(*MethodCall)
	require.True(t, ok)
	assert.Equal(t, "echo", call.Name)
}

func TestScriptBlockIsOpaque(t *testing.T) {
	// Arbitrary foreign code inside a script block must neither be parsed
	// nor produce findings; only its text is kept.
	src := "script {\n  def x = [1, 2].collect { it * 2 }\n  echo \"${x}\"\n}"
	mod, file, diags := Parse("test.jenkinsfile", []byte(src))
	require.False(t, diags.HasErrors(), "opaque block produced errors: %s", diags.Error())
	require.NotNil(t, mod)

	es := mod.Stmts[0].(*ExprStmt)
	call := es.X.(*MethodCall)
	cl, _ := call.TrailingClosure()
	require.NotNil(t, cl)
	assert.Empty(t, cl.Stmts)
	assert.Equal(t, "\n  def x = [1, 2].collect { it * 2 }\n  echo \"${x}\"\n", file.Snippet(cl.BodyRng))
}

func TestExpressionBlockIsOpaque(t *testing.T) {
	src := "expression { env.BRANCH == 'main' && !params.SKIP }"
	mod, _, diags := Parse("test.jenkinsfile", []byte(src))
	require.False(t, diags.HasErrors(), "opaque block produced errors: %s", diags.Error())
	require.Len(t, mod.Stmts, 1)
}
