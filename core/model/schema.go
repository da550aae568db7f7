package model

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

// weightsSchemaJSON は重みドキュメントの構造を定義する JSON Schema。
// 値の整合性（係数の数と特徴量名の数など）は Validate が見る
const weightsSchemaJSON = `{
    "type": "object",
    "required": ["model_type", "version", "is_fitted"],
    "properties": {
        "model_type": {"type": "string", "minLength": 1},
        "version": {"type": "string", "minLength": 1},
        "coefficients": {"type": ["array", "null"], "items": {"type": "number"}},
        "intercept": {"type": "number"},
        "features": {"type": ["array", "null"], "items": {"type": "string"}},
        "hyperparameters": {
            "type": ["object", "null"],
            "properties": {
                "threshold": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1}
            }
        },
        "scaler": {
            "type": "object",
            "required": ["mean", "scale"],
            "properties": {
                "mean": {"type": "array", "items": {"type": "number"}},
                "scale": {"type": "array", "items": {"type": "number", "minimum": 0}}
            }
        },
        "metadata": {"type": ["object", "null"]},
        "is_fitted": {"type": "boolean"}
    }
}`

const weightsSchemaName = "weights.schema.json"

var schemaPrinter = message.NewPrinter(language.English)

var compileWeightsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(weightsSchemaJSON), &doc); err != nil {
		return nil, errors.Wrap(err, "parse weights schema")
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(weightsSchemaName, doc); err != nil {
		return nil, errors.Wrap(err, "add weights schema")
	}
	sch, err := compiler.Compile(weightsSchemaName)
	if err != nil {
		return nil, errors.Wrap(err, "compile weights schema")
	}
	return sch, nil
})

// ValidateDocument はデコード済みの重みドキュメント（JSON または YAML）を
// スキーマで検証する。違反は "/path: 理由" を "; " で連結した ValidationError になる
func ValidateDocument(doc any) error {
	sch, err := compileWeightsSchema()
	if err != nil {
		return err
	}

	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return errors.Wrap(err, "validate weights document")
	}

	var msgs []string
	collectSchemaErrors(ve, &msgs)
	return errors.NewValidationError("weights", strings.Join(msgs, "; "), nil)
}

func collectSchemaErrors(ve *jsonschema.ValidationError, msgs *[]string) {
	if len(ve.Causes) == 0 {
		*msgs = append(*msgs, "/"+strings.Join(ve.InstanceLocation, "/")+": "+ve.ErrorKind.LocalizedString(schemaPrinter))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, msgs)
	}
}
