package books

type ListBooksQuery struct {
	Limit  int    `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset int    `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type UpdateFileRefPayload struct {
	FileRef string `json:"file_ref" validate:"required,max=200"`
}
