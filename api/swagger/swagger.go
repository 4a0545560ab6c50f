package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus ERP Attendance API",
        "description": "Session-based attendance tracking and statistics service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedules", "description": "Timetable slot lookup"},
        {"name": "Sessions", "description": "Attendance session lifecycle"},
        {"name": "Attendance", "description": "Per-student record marking"},
        {"name": "Statistics", "description": "Attendance aggregation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/me/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Authenticated student's slots for today",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Authenticated teacher's sessions for today",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{sectionId}/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Section's scheduled slots for a day or date",
                "parameters": [
                    {"name": "sectionId", "in": "path", "type": "string", "required": true},
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "groupId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/components/{id}/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Component's weekly slots",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/components/{id}/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Component's sessions on a date",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Open an attendance session",
                "parameters": [
                    {"name": "idempotent", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot already has a session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get a session",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Sessions"],
                "summary": "Set or clear the session topic",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTopicRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/records": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Session roster with marked records",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark the session's attendance in one batch",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkBatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Batch rejected"}
                }
            }
        },
        "/sessions/{id}/summary": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Aggregate one session",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Export the session sheet as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/records/{id}": {
            "patch": {
                "tags": ["Attendance"],
                "summary": "Correct a single record",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/attendance-report": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Overall plus course-wise attendance",
                "parameters": [
                    {"name": "studentId", "in": "path", "type": "string", "required": true},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/courses/{courseId}/summary": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Per-course attendance summary",
                "parameters": [
                    {"name": "studentId", "in": "path", "type": "string", "required": true},
                    {"name": "courseId", "in": "path", "type": "string", "required": true},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "component_id": {"type": "string"},
                "date": {"type": "string", "example": "2025-08-21"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "10:00"},
                "topic": {"type": "string"}
            },
            "required": ["component_id", "date", "start_time", "end_time"]
        },
        "UpdateTopicRequest": {
            "type": "object",
            "properties": {
                "topic": {"type": "string"}
            }
        },
        "MarkRecordItem": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "LATE", "LEAVE", "EXCUSED"]},
                "remark": {"type": "string"}
            },
            "required": ["student_id", "status"]
        },
        "MarkBatchRequest": {
            "type": "object",
            "properties": {
                "records": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/MarkRecordItem"}
                }
            },
            "required": ["records"]
        },
        "UpdateRecordRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["PRESENT", "ABSENT", "LATE", "LEAVE", "EXCUSED"]},
                "remark": {"type": "string"}
            },
            "required": ["status"]
        },
        "AttendanceSummary": {
            "type": "object",
            "properties": {
                "total_sessions": {"type": "integer"},
                "present": {"type": "integer"},
                "absent": {"type": "integer"},
                "late": {"type": "integer"},
                "leave": {"type": "integer"},
                "excused": {"type": "integer"},
                "percentage": {"type": "number"}
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
