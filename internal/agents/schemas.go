package agents

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Stage output schemas. Structural guarantees live here; referential
// integrity (chain links, allocation caps) is enforced in code after
// decoding.

const thesisSchema = `{
  "type": "object",
  "required": ["direction", "confidence", "rationale"],
  "properties": {
    "direction": {"type": "string", "enum": ["long", "short", "hold"]},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "rationale": {"type": "string", "minLength": 1}
  }
}`

const analysisSchema = `{
  "type": "object",
  "required": ["signals", "summary"],
  "properties": {
    "signals": {
      "type": "object",
      "additionalProperties": {"type": "number"}
    },
    "probability_score": {"type": "number", "minimum": 0, "maximum": 1},
    "summary": {"type": "string", "minLength": 1}
  }
}`

const riskSchema = `{
  "type": "object",
  "required": ["position_size", "approved", "narrative"],
  "properties": {
    "position_size": {"type": "number", "minimum": 0},
    "stop_loss": {"type": ["number", "null"], "exclusiveMinimum": 0},
    "take_profit": {"type": ["number", "null"], "exclusiveMinimum": 0},
    "approved": {"type": "boolean"},
    "narrative": {"type": "string", "minLength": 1}
  }
}`

const executionSchema = `{
  "type": "object",
  "required": ["no_trade", "narrative"],
  "properties": {
    "no_trade": {"type": "boolean"},
    "order": {
      "type": ["object", "null"],
      "required": ["side", "type", "quantity"],
      "properties": {
        "side": {"type": "string", "enum": ["buy", "sell"]},
        "type": {"type": "string", "enum": ["market", "limit"]},
        "quantity": {"type": "number", "exclusiveMinimum": 0},
        "limit_price": {"type": ["number", "null"], "exclusiveMinimum": 0},
        "time_in_force": {"type": "string", "enum": ["day", "gtc", "ioc"]}
      }
    },
    "narrative": {"type": "string", "minLength": 1}
  }
}`

var (
	compiledThesisSchema    = mustCompileSchema("thesis.json", thesisSchema)
	compiledAnalysisSchema  = mustCompileSchema("analysis.json", analysisSchema)
	compiledRiskSchema      = mustCompileSchema("risk.json", riskSchema)
	compiledExecutionSchema = mustCompileSchema("execution.json", executionSchema)
)

func mustCompileSchema(name, raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(raw)); err != nil {
		panic(err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(err)
	}
	return schema
}
