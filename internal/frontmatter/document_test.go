package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TypedMeta(t *testing.T) {
	doc, err := Parse([]byte(`---
title: Python
description: Backend language choices
tags: [backend, python]
hide: [toc]
search:
  exclude: false
  boost: 2
render_macros: false
owner: platform
---
# Python
`))
	require.NoError(t, err)
	assert.True(t, doc.Had)
	assert.Equal(t, "Python", doc.Meta.Title)
	assert.Equal(t, []string{"backend", "python"}, doc.Meta.Tags)
	assert.True(t, doc.Meta.Hides("toc"))
	assert.False(t, doc.Meta.Hides("navigation"))
	assert.Equal(t, 2.0, doc.Meta.Search.Boost)
	assert.False(t, doc.Meta.MacrosEnabled(true))
	assert.Equal(t, "platform", doc.Fields["owner"])
	assert.Equal(t, "# Python\n", string(doc.Body))
}

func TestParse_NoFrontmatter(t *testing.T) {
	doc, err := Parse([]byte("# Title\n"))
	require.NoError(t, err)
	assert.False(t, doc.Had)
	assert.Empty(t, doc.Fields)
	assert.True(t, doc.Meta.MacrosEnabled(true))
	assert.Nil(t, doc.Meta.RenderMacros)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [x\n---\nbody\n"))
	require.Error(t, err)

	_, err = Parse([]byte("---\ntags: {a: 1}\n---\nbody\n"))
	require.Error(t, err)

	_, err = Parse([]byte("---\ntitle: x\nbody\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestDocumentBytes_SortsKeysAndKeepsBody(t *testing.T) {
	doc, err := Parse([]byte("---\nz: 1\ntitle: T\n---\nbody\n"))
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: T\nz: 1\n---\nbody\n", string(out))

	doc.Fields = map[string]any{}
	out, err = doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "body\n", string(out))
}

func TestFingerprint_StableAndIgnoresOwnField(t *testing.T) {
	fields := map[string]any{"title": "A"}
	body := []byte("# A\n")

	fp1, err := ComputeFingerprint(fields, body)
	require.NoError(t, err)
	require.NotEmpty(t, fp1)

	fp, changed, err := UpsertFingerprint(fields, body)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, fp1, fp)
	assert.Equal(t, fp1, fields[FingerprintField])

	_, changed, err = UpsertFingerprint(fields, body)
	require.NoError(t, err)
	assert.False(t, changed)

	fp2, err := ComputeFingerprint(fields, []byte("# B\n"))
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp2)

	_, err = ComputeFingerprint(nil, body)
	require.Error(t, err)
}
