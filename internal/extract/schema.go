package extract

import "github.com/santhosh-tekuri/jsonschema/v5"

// Per-item schemas guard the identity-defining keys of each entity type;
// anything else the model adds is tolerated and ignored by decoding.

var memberItemSchema = jsonschema.MustCompileString("member.json", `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"role": {"type": "string"},
		"ministry": {"type": "string"}
	}
}`)

var resolutionItemSchema = jsonschema.MustCompileString("resolution.json", `{
	"type": "object",
	"required": ["resolution_no", "text"],
	"properties": {
		"resolution_no": {"type": "string", "minLength": 1},
		"resolution_no_en": {"type": "string"},
		"text": {"type": "string", "minLength": 1}
	}
}`)

var debateFieldsResponseSchema = jsonschema.MustCompileString("debate_fields.json", `{
	"type": "object",
	"required": ["date", "question_number", "members", "topics", "answers_by"],
	"properties": {
		"date": {"type": ["string", "null"]},
		"question_number": {
			"type": "array",
			"items": {"type": ["string", "number"]}
		},
		"members": {"type": "array", "items": {"type": "string"}},
		"topics": {"type": "array", "items": {"type": "string"}},
		"answers_by": {"type": "array", "items": {"type": "string"}}
	}
}`)

var indexResponseSchema = jsonschema.MustCompileString("index.json", `{
	"type": "object",
	"properties": {
		"date": {"type": ["string", "null"]},
		"khand": {"type": ["string", "null"]},
		"members": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"role": {"type": "string"}
				}
			}
		},
		"resolutions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["resolution_no"],
				"properties": {
					"resolution_no": {"type": "string", "minLength": 1},
					"title": {"type": "string"},
					"description": {"type": "string"},
					"page_no": {"type": "string"}
				}
			}
		}
	}
}`)
