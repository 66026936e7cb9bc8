package models

import (
	"time"
)

type ResourceType string

const (
	ResourceBook         ResourceType = "libro"
	ResourceArticle      ResourceType = "articulo"
	ResourceVideo        ResourceType = "video"
	ResourceLink         ResourceType = "enlace"
	ResourceDocument     ResourceType = "documento"
	ResourcePresentation ResourceType = "presentacion"
	ResourceAudio        ResourceType = "audio"
	ResourceImage        ResourceType = "imagen"
)

var ResourceTypes = []ResourceType{
	ResourceBook, ResourceArticle, ResourceVideo, ResourceLink,
	ResourceDocument, ResourcePresentation, ResourceAudio, ResourceImage,
}

type ResourceStatus string

const (
	ResourceActive   ResourceStatus = "activo"
	ResourceInactive ResourceStatus = "inactivo"
	ResourceDraft    ResourceStatus = "borrador"
)

// Resource is supplementary course material: a book, an article or a link.
type Resource struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Title           string         `json:"titulo" gorm:"not null;size:255"`
	Description     string         `json:"descripcion" gorm:"type:text;not null"`
	Type            ResourceType   `json:"tipo" gorm:"type:varchar(20);not null;index:idx_resource_course_type,priority:2"`
	URL             *string        `json:"url" gorm:"size:500"`
	FileURL         *string        `json:"archivo_url" gorm:"size:500"`
	CourseID        uint           `json:"curso_id" gorm:"not null;index:idx_resource_course_type,priority:1"`
	LessonID        *uint          `json:"leccion_id" gorm:"index"`
	Required        bool           `json:"es_obligatorio" gorm:"not null;default:false;index"`
	Order           int            `json:"orden" gorm:"column:sort_order;not null;default:0"`
	Author          *string        `json:"autor" gorm:"size:255"`
	Publisher       *string        `json:"editorial" gorm:"size:255"`
	ISBN            *string        `json:"isbn" gorm:"column:isbn;size:32"`
	PublicationYear *int           `json:"anio_publicacion"`
	Price           *float64       `json:"precio" gorm:"type:decimal(10,2)"`
	Status          ResourceStatus `json:"estado" gorm:"type:varchar(20);not null;default:activo;index"`
	CreatorID       uint           `json:"creador_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Course  *Course `json:"curso,omitempty" gorm:"foreignKey:CourseID"`
	Lesson  *Lesson `json:"leccion,omitempty" gorm:"foreignKey:LessonID"`
	Creator *User   `json:"creador,omitempty" gorm:"foreignKey:CreatorID"`
}

func (Resource) TableName() string {
	return "recursos_adicionales"
}

func (r Resource) IsActive() bool { return r.Status == ResourceActive }

type MultimediaType string

const (
	MediaVideo    MultimediaType = "video"
	MediaAudio    MultimediaType = "audio"
	MediaDocument MultimediaType = "documento"
	MediaImage    MultimediaType = "imagen"
)

// MediaExtensions lists the upload extensions accepted per multimedia type.
var MediaExtensions = map[MultimediaType][]string{
	MediaVideo:    {".mp4", ".avi", ".mov", ".wmv"},
	MediaAudio:    {".mp3", ".wav", ".ogg", ".aac"},
	MediaDocument: {".pdf", ".doc", ".docx", ".txt"},
	MediaImage:    {".jpg", ".jpeg", ".png", ".gif", ".webp"},
}

type MultimediaStatus string

const (
	MediaActive   MultimediaStatus = "activo"
	MediaInactive MultimediaStatus = "inactivo"
)

// Multimedia is a video, audio, document or image attached to a lesson.
// FileKey is set when the file lives in our storage rather than at an external URL.
type Multimedia struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Title       string           `json:"titulo" gorm:"not null;size:255"`
	Description string           `json:"descripcion" gorm:"type:text;not null"`
	Type        MultimediaType   `json:"tipo" gorm:"type:varchar(20);not null"`
	URL         string           `json:"url" gorm:"size:500;not null"`
	FileKey     *string          `json:"-" gorm:"size:500"`
	LessonID    uint             `json:"leccion_id" gorm:"not null;index:idx_multimedia_lesson_order,priority:1"`
	Order       int              `json:"orden" gorm:"column:sort_order;not null;index:idx_multimedia_lesson_order,priority:2"`
	Status      MultimediaStatus `json:"estado" gorm:"type:varchar(20);not null;default:activo"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lesson *Lesson `json:"leccion,omitempty" gorm:"foreignKey:LessonID"`
}

func (Multimedia) TableName() string {
	return "multimedia"
}

func (m Multimedia) IsActive() bool { return m.Status == MediaActive }
