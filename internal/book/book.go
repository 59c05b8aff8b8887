package book

// Book represents a catalog entry. ISBN is the natural key.
type Book struct {
	Title  string `json:"title" db:"title" validate:"required"`
	Author string `json:"author" db:"author" validate:"required"`
	ISBN   string `json:"isbn" db:"isbn" validate:"required"`
}

// Selector picks the rows a delete applies to. Exactly one field must be set.
type Selector struct {
	Title string
	ISBN  string
}
