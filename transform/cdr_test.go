package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kezlya/solr2es/models"
)

func TestCDR_Transform(t *testing.T) {
	rules := DefaultCDRRules()
	rules.DumpPath = "file:/data2/dump/"
	rules.MountPoint = "http://example.org/alldata/"
	rules.Removals = []string{"_version_"}
	cdr, err := NewCDR(rules)
	require.NoError(t, err)

	id, out, err := cdr.Transform(models.Document{
		"id":           "file:/data2/dump/a/b.html",
		"url":          "http://site/b.html",
		"contentType":  "text/html",
		"content":      "hello",
		"outlinks":     []interface{}{"http://site/c"},
		"Author_ts_md": []interface{}{"jo"},
		"width_i_md":   json.Number("20"),
		"title_md":     "plain",
		"_version_":    json.Number("1"),
		"host":         "site",
	})
	require.NoError(t, err)

	assert.Equal(t, "file:/data2/dump/a/b.html", id)
	assert.Equal(t, models.Document{
		"obj_id":           "file:/data2/dump/a/b.html",
		"obj_original_url": "http://site/b.html",
		"content_type":     "text/html",
		"extracted_text":   "hello",
		"obj_outlinks":     []interface{}{"http://site/c"},
		"host":             "site",
		"title_md":         "plain",
		"extracted_metadata": map[string]interface{}{
			"Author": []interface{}{"jo"},
			"width":  json.Number("20"),
		},
		"obj_stored_url": "http://example.org/alldata/a/b.html",
		"crawler":        "Nutch-1.12-SNAPSHOT",
		"team":           "NASA_JPL",
		"version":        2.0,
	}, out)
}

func TestCDR_TransformRequiresID(t *testing.T) {
	cdr, err := NewCDR(DefaultCDRRules())
	require.NoError(t, err)

	_, _, err = cdr.Transform(models.Document{"url": "x"})
	assert.ErrorIs(t, err, ErrNoID)

	_, _, err = cdr.Transform(models.Document{"id": ""})
	assert.ErrorIs(t, err, ErrNoID)

	_, _, err = cdr.Transform(models.Document{"id": json.Number("42")})
	assert.ErrorIs(t, err, ErrNoID)
}

func TestCDR_EmptyMetadataIsAlwaysPresent(t *testing.T) {
	cdr, err := NewCDR(DefaultCDRRules())
	require.NoError(t, err)

	_, out, err := cdr.Transform(models.Document{"id": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, out["extracted_metadata"])
	assert.Equal(t, "x", out["obj_stored_url"])
}

func TestCDR_AdditionsWin(t *testing.T) {
	cdr, err := NewCDR(DefaultCDRRules())
	require.NoError(t, err)

	_, out, err := cdr.Transform(models.Document{"id": "x", "team": "other"})
	require.NoError(t, err)
	assert.Equal(t, "NASA_JPL", out["team"])
}

func TestCDR_CoerceMetadata(t *testing.T) {
	rules := DefaultCDRRules()
	rules.CoerceMetadata = true
	cdr, err := NewCDR(rules)
	require.NoError(t, err)

	_, out, err := cdr.Transform(models.Document{
		"id":          "x",
		"height_s_md": "480",
		"tags_ss_md":  []interface{}{"1.5", "gun"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"height": int64(480),
		"tags":   []interface{}{1.5, "gun"},
	}, out["extracted_metadata"])
}

func TestNewCDR_RejectsBadPattern(t *testing.T) {
	rules := DefaultCDRRules()
	rules.MetadataPattern = "(unclosed"
	_, err := NewCDR(rules)
	assert.Error(t, err)

	rules.MetadataPattern = "no_group_md"
	_, err = NewCDR(rules)
	assert.Error(t, err)
}
