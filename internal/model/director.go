package model

// DirectorEntity is a director as it is persisted. Films reference it through FilmEntity.DirectorID.
type DirectorEntity struct {
	ID   int64  `bson:"_id" db:"id"`
	Name string `bson:"name" db:"name"`
}

// Director is the API representation of a director, with the films they directed.
// Films listed here carry no director of their own.
type Director struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" binding:"required,notblank,max=128"`
	Films []Film `json:"films"`
}
