package extract

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// profileSchemaJSON constrains a sanitized document profile: only the known
// keys, numbers for the money fields, non-empty strings elsewhere.
const profileSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "industry":            {"$ref": "#/definitions/text"},
    "sales":               {"type": "number"},
    "total_funding":       {"type": "number"},
    "homepage":            {"$ref": "#/definitions/text"},
    "key_executive":       {"$ref": "#/definitions/text"},
    "address":             {"$ref": "#/definitions/text"},
    "email":               {"$ref": "#/definitions/text"},
    "phone_number":        {"$ref": "#/definitions/text"},
    "company_description": {"$ref": "#/definitions/text"},
    "products_services":   {"$ref": "#/definitions/text"},
    "target_customers":    {"$ref": "#/definitions/text"},
    "competitors":         {"$ref": "#/definitions/text"},
    "strengths":           {"$ref": "#/definitions/text"},
    "business_model":      {"$ref": "#/definitions/text"}
  },
  "definitions": {
    "text": {"type": "string", "minLength": 1}
  }
}`

var profileSchema = compileSchema("profile.json", profileSchemaJSON)

func compileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}
