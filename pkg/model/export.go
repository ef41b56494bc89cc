package model

// UserInputs are the organisation specific fields printed on the act.
type UserInputs struct {
	Organization string `json:"organization"`
	HeadPosition string `json:"headPosition"`
	SystemName   string `json:"systemName"`
}

// ExportRequest is the body of the report export endpoint.
type ExportRequest struct {
	FileName string    `json:"fileName"`
	Payload  AnswerSet `json:"payload"`
}

// ActExportRequest is the body of the act export endpoint.
type ActExportRequest struct {
	FileName   string     `json:"fileName"`
	Payload    AnswerSet  `json:"payload"`
	UserInputs UserInputs `json:"userInputs"`
}

// Document is a binary artifact returned by one of the export endpoints.
type Document struct {
	Name        string
	ContentType string
	Body        []byte
}
