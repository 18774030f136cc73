package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "OBE Attainment API",
        "description": "Course and program outcome attainment for outcome based accreditation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Attainment", "description": "CO and PO attainment calculation, reports and exports"},
        {"name": "Observability", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/courses/{id}/attainment": {
            "get": {
                "tags": ["Attainment"],
                "summary": "CO attainment of a course",
                "description": "Resolves every course outcome. Without sectionId all sections are aggregated.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/CourseID"},
                    {"$ref": "#/parameters/SectionID"},
                    {"$ref": "#/parameters/TargetPercent"},
                    {"$ref": "#/parameters/Thresholds"},
                    {"$ref": "#/parameters/InternalWeight"},
                    {"$ref": "#/parameters/ExternalWeight"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CourseAttainmentEnvelope"}},
                    "400": {"description": "Invalid policy or attainment data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course or section not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/attainment/report": {
            "get": {
                "tags": ["Attainment"],
                "summary": "Detailed course attainment report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/CourseID"},
                    {"$ref": "#/parameters/SectionID"},
                    {"$ref": "#/parameters/TargetPercent"},
                    {"$ref": "#/parameters/Thresholds"},
                    {"$ref": "#/parameters/InternalWeight"},
                    {"$ref": "#/parameters/ExternalWeight"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid policy or attainment data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course or section not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}/attainment/export": {
            "get": {
                "tags": ["Attainment"],
                "summary": "Export course CO attainment",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/CourseID"},
                    {"$ref": "#/parameters/SectionID"},
                    {"$ref": "#/parameters/Format"}
                ],
                "responses": {
                    "200": {"description": "Rendered file", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course or section not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs/{id}/attainment": {
            "get": {
                "tags": ["Attainment"],
                "summary": "PO attainment of a program",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/TargetPercent"},
                    {"$ref": "#/parameters/Thresholds"},
                    {"$ref": "#/parameters/InternalWeight"},
                    {"$ref": "#/parameters/ExternalWeight"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProgramAttainmentEnvelope"}},
                    "400": {"description": "Invalid policy or attainment data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Program not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs/{id}/attainment/export": {
            "get": {
                "tags": ["Attainment"],
                "summary": "Export program PO attainment",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/Format"}
                ],
                "responses": {
                    "200": {"description": "Rendered file", "schema": {"type": "file"}},
                    "404": {"description": "Program not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attainment/policy": {
            "get": {
                "tags": ["Attainment"],
                "summary": "Configured attainment policy",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attainment/cache": {
            "delete": {
                "tags": ["Attainment"],
                "summary": "Purge cached attainment reports",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "query", "type": "string", "description": "Course or program ID"}
                ],
                "responses": {
                    "204": {"description": "Purged"}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        }
    },
    "parameters": {
        "CourseID": {"name": "id", "in": "path", "required": true, "type": "string", "description": "Course ID"},
        "SectionID": {"name": "sectionId", "in": "query", "type": "string", "description": "Section ID"},
        "TargetPercent": {"name": "targetPercent", "in": "query", "type": "number", "description": "Per question target percent"},
        "Thresholds": {"name": "thresholds", "in": "query", "type": "string", "description": "Level cut points, e.g. 50,60,70"},
        "InternalWeight": {"name": "internalWeight", "in": "query", "type": "number"},
        "ExternalWeight": {"name": "externalWeight", "in": "query", "type": "number"},
        "Format": {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
    },
    "definitions": {
        "ReportSubject": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "code": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "OutcomeAttainment": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "description": {"type": "string"},
                "level": {"type": "integer", "minimum": 0, "maximum": 3},
                "percent": {"type": "number"},
                "dataAvailable": {"type": "boolean"}
            }
        },
        "PoContributor": {
            "type": "object",
            "properties": {
                "coId": {"type": "string"},
                "coCode": {"type": "string"},
                "courseCode": {"type": "string"},
                "mappingLevel": {"type": "integer"},
                "percent": {"type": "number"}
            }
        },
        "ProgramOutcomeAttainment": {
            "allOf": [
                {"$ref": "#/definitions/OutcomeAttainment"},
                {
                    "type": "object",
                    "properties": {
                        "contributors": {"type": "array", "items": {"$ref": "#/definitions/PoContributor"}}
                    }
                }
            ]
        },
        "CourseAttainmentReport": {
            "type": "object",
            "properties": {
                "courseOrProgram": {"$ref": "#/definitions/ReportSubject"},
                "sectionId": {"type": "string"},
                "outcomes": {"type": "array", "items": {"$ref": "#/definitions/OutcomeAttainment"}},
                "generatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "ProgramAttainmentReport": {
            "type": "object",
            "properties": {
                "courseOrProgram": {"$ref": "#/definitions/ReportSubject"},
                "outcomes": {"type": "array", "items": {"$ref": "#/definitions/ProgramOutcomeAttainment"}},
                "generatedAt": {"type": "string", "format": "date-time"}
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
                "meta": {"type": "object"}
            }
        },
        "CourseAttainmentEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/CourseAttainmentReport"},
                "meta": {"type": "object"}
            }
        },
        "ProgramAttainmentEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/ProgramAttainmentReport"},
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
