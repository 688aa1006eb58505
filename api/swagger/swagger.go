package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EcoQuest Gamification API",
        "description": "Eco-points, badges and leaderboards for the EcoQuest platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Gamification", "description": "Point awards and badge unlocks"},
        {"name": "Badges", "description": "Badge catalog management"},
        {"name": "Leaderboard", "description": "Rankings and rank lookups"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/gamification/points": {
            "post": {
                "tags": ["Gamification"],
                "summary": "Award eco-points to a user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AwardPointsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Points awarded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/gamification/badges/unlock": {
            "post": {
                "tags": ["Gamification"],
                "summary": "Manually unlock a badge for a user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UnlockBadgeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Badge unlocked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Insufficient points"},
                    "409": {"description": "Badge already granted"}
                }
            }
        },
        "/gamification/stats": {
            "get": {
                "tags": ["Gamification"],
                "summary": "Gamification stats for the authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/gamification/badges/available": {
            "get": {
                "tags": ["Gamification"],
                "summary": "Badges available to the authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/badges": {
            "get": {
                "tags": ["Badges"],
                "summary": "List active catalog badges",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "rarity", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Badges"],
                "summary": "Create a catalog badge",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBadgeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Badge name already exists"}
                }
            }
        },
        "/badges/{id}": {
            "get": {
                "tags": ["Badges"],
                "summary": "Fetch a catalog badge by ID",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Badge not found"}
                }
            },
            "put": {
                "tags": ["Badges"],
                "summary": "Partially update a catalog badge",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateBadgeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Badge not found"}
                }
            },
            "delete": {
                "tags": ["Badges"],
                "summary": "Deactivate a catalog badge",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deactivated"},
                    "404": {"description": "Badge not found"}
                }
            }
        },
        "/leaderboard": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Points-descending leaderboard",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "school", "in": "query", "type": "string"},
                    {"name": "timeframe", "in": "query", "type": "string", "enum": ["all", "week", "month"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaderboard/school": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Leaderboard restricted to one school's students",
                "parameters": [
                    {"name": "school", "in": "query", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaderboard/role/{role}": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Leaderboard restricted to a single role",
                "parameters": [
                    {"name": "role", "in": "path", "required": true, "type": "string", "enum": ["student", "teacher", "ngo", "admin"]},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaderboard/rank": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Authenticated user's rank and percentile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "school", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaderboard/export": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Export the leaderboard as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "school", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AwardPointsRequest": {
            "type": "object",
            "required": ["user_id", "points"],
            "properties": {
                "user_id": {"type": "string"},
                "points": {"type": "integer", "minimum": 1, "maximum": 1000},
                "reason": {"type": "string"},
                "metadata": {"type": "object"}
            }
        },
        "UnlockBadgeRequest": {
            "type": "object",
            "required": ["user_id", "badge_name"],
            "properties": {
                "user_id": {"type": "string"},
                "badge_name": {"type": "string"}
            }
        },
        "CreateBadgeRequest": {
            "type": "object",
            "required": ["name", "description", "icon", "category"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "icon": {"type": "string"},
                "category": {"type": "string", "enum": ["participation", "achievement", "milestone", "special", "environmental", "social"]},
                "rarity": {"type": "string", "enum": ["common", "uncommon", "rare", "epic", "legendary"]},
                "points_required": {"type": "integer", "minimum": 0},
                "requirements": {"type": "object"},
                "metadata": {"type": "object"}
            }
        },
        "UpdateBadgeRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "icon": {"type": "string"},
                "category": {"type": "string"},
                "rarity": {"type": "string"},
                "points_required": {"type": "integer"},
                "active": {"type": "boolean"},
                "requirements": {"type": "object"},
                "metadata": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
