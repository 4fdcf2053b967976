// Package transform holds the per-job record transforms: the EDR (Solr) to
// CDR (Elasticsearch) mapping and the Solr atomic-update builders.
package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kezlya/solr2es/models"
	"github.com/kezlya/solr2es/schema"
)

// ErrNoID is returned for records without a usable id.
var ErrNoID = errors.New("document has no id")

// DefaultMetadataPattern matches Solr dynamic metadata fields such as
// Author_ts_md or width_i_md; group 1 is the bare metadata key.
const DefaultMetadataPattern = `(.*)_(ts?|ss?|ds?|bs?|fs?|is?|l?)_md`

// CDRRules configures the EDR to CDR mapping.
type CDRRules struct {
	// Mapping renames source fields.
	Mapping map[string]string `yaml:"mapping"`
	// Removals are dropped unless renamed or matched as metadata.
	Removals []string `yaml:"removals"`
	// MetadataPattern selects fields nested under MetadataField.
	MetadataPattern string `yaml:"metadata_pattern"`
	MetadataField   string `yaml:"metadata_field"`
	// DumpPath is replaced by MountPoint in the id to build obj_stored_url.
	DumpPath   string `yaml:"dump_path"`
	MountPoint string `yaml:"mount_point"`
	// Additions are set on every output document.
	Additions map[string]interface{} `yaml:"additions"`
	// CoerceMetadata converts textual metadata values to numbers and booleans.
	CoerceMetadata bool `yaml:"coerce_metadata"`
}

// DefaultCDRRules returns the mapping used for the weapons crawl import.
func DefaultCDRRules() CDRRules {
	return CDRRules{
		Mapping: map[string]string{
			"id":          "obj_id",
			"outlinks":    "obj_outlinks",
			"outpaths":    "obj_outurls",
			"contentType": "content_type",
			"content":     "extracted_text",
			"url":         "obj_original_url",
		},
		MetadataPattern: DefaultMetadataPattern,
		MetadataField:   "extracted_metadata",
		Additions: map[string]interface{}{
			"crawler": "Nutch-1.12-SNAPSHOT",
			"team":    "NASA_JPL",
			"version": 2.0,
		},
	}
}

// CDR maps Solr documents to the CDR schema.
type CDR struct {
	rules     CDRRules
	pattern   *regexp.Regexp
	removals  map[string]struct{}
	evaluator schema.Evaluator
}

// NewCDR compiles rules. The metadata pattern only has to match a prefix of
// the field name.
func NewCDR(rules CDRRules) (*CDR, error) {
	if rules.MetadataPattern == "" {
		rules.MetadataPattern = DefaultMetadataPattern
	}
	if rules.MetadataField == "" {
		rules.MetadataField = "extracted_metadata"
	}
	re, err := regexp.Compile(`^(?:` + rules.MetadataPattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("metadata pattern %q: %w", rules.MetadataPattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("metadata pattern %q needs a capture group", rules.MetadataPattern)
	}

	removals := make(map[string]struct{}, len(rules.Removals))
	for _, r := range rules.Removals {
		removals[r] = struct{}{}
	}
	return &CDR{rules: rules, pattern: re, removals: removals}, nil
}

// Transform returns the document id and its CDR form.
func (c *CDR) Transform(d models.Document) (string, models.Document, error) {
	id, ok := d["id"].(string)
	if !ok || id == "" {
		return "", nil, ErrNoID
	}

	res := make(models.Document, len(d)+len(c.rules.Additions)+2)
	metadata := make(map[string]interface{})
	for key, val := range d {
		if to, ok := c.rules.Mapping[key]; ok {
			res[to] = val
			continue
		}
		if m := c.pattern.FindStringSubmatch(key); m != nil {
			if c.rules.CoerceMetadata && c.evaluator.CanEval(val) {
				val = c.evaluator.Eval(val)
			}
			metadata[m[1]] = val
		} else if _, drop := c.removals[key]; !drop {
			res[key] = val
		}
	}
	res[c.rules.MetadataField] = metadata
	res["obj_stored_url"] = storedURL(id, c.rules.DumpPath, c.rules.MountPoint)
	for k, v := range c.rules.Additions {
		res[k] = v
	}
	return id, res, nil
}

func storedURL(id, dumpPath, mountPoint string) string {
	if dumpPath == "" {
		return id
	}
	return strings.ReplaceAll(id, dumpPath, mountPoint)
}
