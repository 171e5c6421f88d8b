// internal/common/validation/schemas.go
package validation

// Schema names accepted by Validator.Validate.
const (
	SchemaChatRequest    = "chat-request"
	SchemaUserProfile    = "user-profile"
	SchemaMatchRequest   = "match-request"
	SchemaExtractRequest = "extract-request"
	SchemaPolicy         = "policy"
)

const userProfileSchema = `{
  "type": "object",
  "properties": {
    "region":          {"type": "string", "maxLength": 50},
    "age_group":       {"type": "string", "maxLength": 20},
    "age":             {"type": "integer", "minimum": 0, "maximum": 150},
    "business_status": {"type": "string", "maxLength": 20},
    "business_type":   {"type": "string", "maxLength": 100},
    "employment":      {"type": "string", "maxLength": 100},
    "income_level":    {"type": "string", "maxLength": 50},
    "income":          {"type": "integer", "minimum": 0},
    "support_purpose": {"type": "string", "maxLength": 50},
    "tax_status":      {"type": "string", "maxLength": 50},
    "marital_status":  {"type": "string", "maxLength": 20}
  },
  "additionalProperties": true
}`

const chatRequestSchema = `{
  "type": "object",
  "properties": {
    "message":         {"type": "string", "maxLength": 1000},
    "session_id":      {"type": "string", "maxLength": 128},
    "policyText":      {"type": "string", "maxLength": 10000},
    "userProfile":     {"type": "object"},
    "user_profile":    {"type": "object"},
    "questions_asked": {"type": "array", "items": {"type": "string"}}
  }
}`

const matchRequestSchema = `{
  "type": "object",
  "properties": {
    "userProfile": {"type": "object"},
    "policyText":  {"type": "string", "maxLength": 10000},
    "policyId":    {"type": "string", "maxLength": 128}
  }
}`

const extractRequestSchema = `{
  "type": "object",
  "properties": {
    "policyText": {"type": "string", "maxLength": 10000}
  }
}`

const policySchema = `{
  "type": "object",
  "properties": {
    "id":          {"type": "string", "maxLength": 128, "pattern": "^[A-Za-z0-9_-]*$"},
    "title":       {"type": "string", "minLength": 1, "maxLength": 200},
    "description": {"type": "string", "maxLength": 5000},
    "provider":    {"type": "string", "maxLength": 200},
    "eligibility": {"type": "string", "maxLength": 10000},
    "category":    {"type": "string", "maxLength": 50},
    "regions":     {"type": "array", "items": {"type": "string", "maxLength": 50}}
  },
  "required": ["title"]
}`

var builtinSchemas = map[string]string{
	SchemaChatRequest:    chatRequestSchema,
	SchemaUserProfile:    userProfileSchema,
	SchemaMatchRequest:   matchRequestSchema,
	SchemaExtractRequest: extractRequestSchema,
	SchemaPolicy:         policySchema,
}
