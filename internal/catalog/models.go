package catalog

// Fallbacks for fields a catalog record may omit.
const (
	DefaultTitle       = "Unknown Title"
	DefaultAuthor      = "Unknown Author"
	DefaultYear        = "Unknown"
	DefaultDescription = "No description available."

	// DefaultQuery is searched when neither text nor interests are set.
	DefaultQuery = "popular"

	// MaxGenres caps the genre labels kept per book.
	MaxGenres = 3

	MinRating = 3.0
	MaxRating = 5.0
)

// BookSummary is the display-ready form of one catalog search result.
type BookSummary struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Author      string   `json:"author" yaml:"author"`
	CoverURL    string   `json:"cover_url" yaml:"cover_url"`
	Year        string   `json:"year" yaml:"year"`
	Genres      []string `json:"genres" yaml:"genres"`
	Rating      float64  `json:"rating" yaml:"rating"`
	Description string   `json:"description" yaml:"description"`
}

// Open Library search API JSON structures.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	CoverI           *int64   `json:"cover_i"`
	FirstPublishYear *int     `json:"first_publish_year"`
	SubjectFacet     []string `json:"subject_facet"`
	Subject          []string `json:"subject"`
	FirstSentence    []string `json:"first_sentence"`
}
