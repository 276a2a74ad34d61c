package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/declpipe/internal/parser"
	"github.com/vk/declpipe/internal/testutil"
)

const validPipeline = `
pipeline {
    agent any
    stages {
        stage('Build') {
            steps {
                sh 'make'
            }
        }
    }
}
`

func TestParseMinimalPipeline(t *testing.T) {
	res := testutil.Parse(t, validPipeline)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Pipeline)
	require.False(t, res.Diags.HasErrors(), testutil.DiagText(res.Diags))

	require.NotNil(t, res.Pipeline.Agent)
	assert.Equal(t, "any", res.Pipeline.Agent.Type.Name)

	require.NotNil(t, res.Pipeline.Stages)
	require.Len(t, res.Pipeline.Stages.Stages, 1)
	stage := res.Pipeline.Stages.Stages[0]
	assert.Equal(t, "Build", stage.Name)
	require.Len(t, stage.Branches, 1)
	assert.Equal(t, "default", stage.Branches[0].Name)
	require.Len(t, stage.Branches[0].Steps, 1)
	assert.Equal(t, "sh", stage.Branches[0].Steps[0].StepName())
}

func TestParseNoEntryPointIsNoOp(t *testing.T) {
	res := testutil.Parse(t, "node {\n  checkout(scm)\n}\n")
	require.NoError(t, res.Err)
	assert.Nil(t, res.Pipeline)
	assert.False(t, res.Diags.HasErrors(), testutil.DiagText(res.Diags))
}

func TestParseNestedEntryPointFails(t *testing.T) {
	src := "node {\n  pipeline {\n    agent any\n  }\n}\n"
	res := testutil.Parse(t, src)
	require.ErrorIs(t, res.Err, parser.ErrNotAtTop)
	assert.Nil(t, res.Pipeline)
	testutil.RequireErrorContains(t, res.Diags, "top level")
}

func TestParseEntryPointWithoutBlockFails(t *testing.T) {
	res := testutil.Parse(t, "pipeline\n")
	require.ErrorIs(t, res.Err, parser.ErrMissingBlock)
	assert.Nil(t, res.Pipeline)
}

func TestParseDuplicateSectionLastWins(t *testing.T) {
	src := `
pipeline {
    agent any
    environment {
        FOO = 'first'
    }
    environment {
        FOO = 'second'
    }
    stages {
        stage('A') {
            steps {
                echo 'hi'
            }
        }
    }
}
`
	res := testutil.Parse(t, src)
	require.NotNil(t, res.Pipeline)
	testutil.RequireErrorContains(t, res.Diags, "Multiple occurrences of the environment section")

	require.NotNil(t, res.Pipeline.Environment)
	require.Len(t, res.Pipeline.Environment.Entries, 1)
	val := res.Pipeline.Environment.Entries[0].Value
	require.True(t, val.IsConstant())
	assert.Equal(t, "second", val.Const.AsString())
}

func TestParseLegacySections(t *testing.T) {
	testCases := []struct {
		section  string
		expected string
	}{
		{section: "postBuild", expected: "renamed as of version 0.8. Use post instead"},
		{section: "notifications", expected: "removed as of version 0.6"},
		{section: "jobProperties", expected: "renamed as of version 0.8. Use options instead"},
		{section: "wrappers", expected: "removed as of version 0.8"},
	}

	for _, tc := range testCases {
		t.Run(tc.section, func(t *testing.T) {
			src := "pipeline {\n    agent any\n    " + tc.section + " {\n    }\n    stages {\n        stage('A') {\n            steps {\n                echo 'hi'\n            }\n        }\n    }\n}\n"
			res := testutil.Parse(t, src)
			require.NotNil(t, res.Pipeline)
			testutil.RequireErrorContains(t, res.Diags, tc.expected)
		})
	}
}

func TestParseUndefinedSection(t *testing.T) {
	src := `
pipeline {
    agent any
    bananas {
    }
    stages {
        stage('A') {
            steps {
                echo 'hi'
            }
        }
    }
}
`
	res := testutil.Parse(t, src)
	require.NotNil(t, res.Pipeline)
	testutil.RequireErrorContains(t, res.Diags, `Undefined section "bananas"`)
}

func TestParseEnvironmentAndTools(t *testing.T) {
	src := `
pipeline {
    agent any
    environment {
        FOO = 'bar'
        GREETING = "hello ${env.USER}"
    }
    tools {
        maven 'M3'
    }
    stages {
        stage('A') {
            steps {
                echo 'hi'
            }
        }
    }
}
`
	res := testutil.Parse(t, src)
	require.NotNil(t, res.Pipeline)
	require.False(t, res.Diags.HasErrors(), testutil.DiagText(res.Diags))

	env := res.Pipeline.Environment
	require.NotNil(t, env)
	require.Len(t, env.Entries, 2)
	assert.Equal(t, "FOO", env.Entries[0].Key.Name)
	assert.True(t, env.Entries[0].Value.IsConstant())
	assert.Equal(t, "GREETING", env.Entries[1].Key.Name)
	assert.False(t, env.Entries[1].Value.IsConstant())
	assert.Equal(t, `"hello ${env.USER}"`, env.Entries[1].Value.Source)

	tools := res.Pipeline.Tools
	require.NotNil(t, tools)
	require.Len(t, tools.Entries, 1)
	assert.Equal(t, "maven", tools.Entries[0].Key.Name)
	assert.Equal(t, "M3", tools.Entries[0].Value.Const.AsString())
}

func TestParseOptionsParametersTriggers(t *testing.T) {
	src := `
pipeline {
    agent any
    options {
        buildDiscarder(logRotator(numToKeepStr: '1'))
    }
    parameters {
        string(name: 'DEPLOY_ENV', defaultValue: 'staging')
        booleanParam(name: 'DEBUG_BUILD', defaultValue: true)
    }
    triggers {
        cron('@daily')
    }
    stages {
        stage('A') {
            steps {
                echo 'hi'
            }
        }
    }
}
`
	res := testutil.Parse(t, src)
	require.NotNil(t, res.Pipeline)
	require.False(t, res.Diags.HasErrors(), testutil.DiagText(res.Diags))

	require.NotNil(t, res.Pipeline.Options)
	require.Len(t, res.Pipeline.Options.Entries, 1)
	opt := res.Pipeline.Options.Entries[0]
	assert.Equal(t, "buildDiscarder", opt.Name.Name)
	// The bare argument binds to the sole required parameter; the nested
	// call is a composite and rides along as a placeholder.
	strategy := opt.Args.Find("strategy")
	require.NotNil(t, strategy)
	assert.False(t, strategy.IsConstant())
	assert.Equal(t, "logRotator(numToKeepStr: '1')", strategy.Source)

	require.NotNil(t, res.Pipeline.Parameters)
	require.Len(t, res.Pipeline.Parameters.Entries, 2)

	require.NotNil(t, res.Pipeline.Triggers)
	require.Len(t, res.Pipeline.Triggers.Entries, 1)
	trig := res.Pipeline.Triggers.Entries[0]
	assert.Equal(t, "cron", trig.Name.Name)
	// cron has a sole required parameter, so the bare argument is promoted.
	spec := trig.Args.Find("spec")
	require.NotNil(t, spec)
	assert.Equal(t, "@daily", spec.Const.AsString())
}

func TestParsePostSection(t *testing.T) {
	src := `
pipeline {
    agent any
    stages {
        stage('A') {
            steps {
                echo 'hi'
            }
        }
    }
    post {
        always {
            echo 'done'
        }
        failure {
            mail(to: 'dev@example.com', subject: 'broken')
        }
    }
}
`
	res := testutil.Parse(t, src)
	require.NotNil(t, res.Pipeline)
	require.False(t, res.Diags.HasErrors(), testutil.DiagText(res.Diags))

	post := res.Pipeline.Post
	require.NotNil(t, post)
	require.Len(t, post.Conditions, 2)
	assert.Equal(t, "always", post.Conditions[0].Condition.Name)
	assert.Equal(t, "failure", post.Conditions[1].Condition.Name)
	require.Len(t, post.Conditions[1].Branch.Steps, 1)
	assert.Equal(t, "mail", post.Conditions[1].Branch.Steps[0].StepName())
}

func TestParseDuplicateEnvironmentVariable(t *testing.T) {
	src := `
pipeline {
    agent any
    stages {
        stage('A') {
            steps {
                echo 'hi'
            }
        }
    }
    environment {
        FOO = 'first'
        FOO = 'second'
    }
}
`
	res := testutil.Parse(t, src)
	testutil.RequireErrorContains(t, res.Diags, "Duplicate environment variable name: 'FOO'")

	env := res.Pipeline.Environment
	require.NotNil(t, env)
	require.Len(t, env.Entries, 1)
	assert.Equal(t, "first", env.Entries[0].Value.Const.AsString())
}
