package api

var openAPISpecYAML = []byte(`openapi: 3.0.3
info:
  title: papercast API
  description: Runs the paper analysis pipeline and semantic fact-checking.
  version: 1.0.0
paths:
  /healthz:
    get:
      summary: Health check
      responses:
        "200":
          description: Service is healthy
  /v1/analyze:
    post:
      summary: Run the four-phase analysis pipeline on a paper
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              properties:
                path:
                  type: string
                  description: Path to a paper file readable by the server
                content:
                  type: string
                  description: Inline paper text; takes precedence over path
      responses:
        "200":
          description: Phase outputs, generated script, and validation report
        "400":
          description: Missing or unreadable paper
        "502":
          description: A gateway call failed
  /v1/validate:
    post:
      summary: Fact-check generated text against a source text
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [source]
              properties:
                generated:
                  type: string
                source:
                  type: string
      responses:
        "200":
          description: Validation report
        "400":
          description: Missing source text
        "502":
          description: The embedding call failed
`)
