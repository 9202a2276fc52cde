// Package docs registers the OpenAPI document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Create an account",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.RegisterInput"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a bearer token",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.LoginInput"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/tournaments": {
            "get": {
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"],
                "summary": "Create a tournament",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}
            }
        },
        "/tournaments/{tournamentID}/groups": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["groups"],
                "summary": "Allocate seeded players into groups",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "412": {"description": "Precondition Failed"}}
            }
        },
        "/tournaments/{tournamentID}/groups/{groupNumber}/rounds": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["rounds"],
                "summary": "Generate the next round of a group",
                "parameters": [
                    {"type": "integer", "name": "tournamentID", "in": "path", "required": true},
                    {"type": "integer", "name": "groupNumber", "in": "path", "required": true}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "412": {"description": "Precondition Failed"}}
            }
        },
        "/matches/{matchID}/confirm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["matches"],
                "summary": "Submit a result confirmation",
                "parameters": [
                    {"type": "integer", "name": "matchID", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/services.ResultInput"}}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {
                "tags": ["standings"],
                "summary": "Tournament standings",
                "parameters": [
                    {"type": "integer", "name": "tournamentID", "in": "path", "required": true},
                    {"type": "integer", "name": "round", "in": "query"},
                    {"type": "integer", "name": "group", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "services.RegisterInput": {
            "type": "object",
            "properties": {
                "handle": {"type": "string"},
                "display_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["player", "viewer"]}
            }
        },
        "services.LoginInput": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "services.CreateTournamentInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "venue": {"type": "string"},
                "srr_rounds": {"type": "integer"},
                "number_of_groups": {"type": "integer"},
                "table_count": {"type": "integer"},
                "round_one_method": {"type": "string", "enum": ["adjacent", "top_vs_top", "top_vs_bottom"]}
            }
        },
        "services.ResultInput": {
            "type": "object",
            "properties": {
                "score1": {"type": "integer"},
                "score2": {"type": "integer"},
                "boards": {"type": "array", "items": {"type": "object"}},
                "sudden_death": {"type": "object"},
                "toss": {"type": "object"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Carrom SRR Tournament API",
	Description:      "Swiss round-robin carrom tournaments: groups, pairings, result confirmation and standings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
