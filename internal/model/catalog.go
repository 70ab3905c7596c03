package model

// Catalog rows are administered outside this service; the engine only reads
// them by id.

type PaymentType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LessonType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
