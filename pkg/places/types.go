package places

// Status values reported in the Places API response envelope
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// DefaultPhotoWidth is used when PhotoURL is called with a non-positive width
const DefaultPhotoWidth = 800

// TextSearchRadiusMeters biases text search around a point when coordinates are given
const TextSearchRadiusMeters = 10000

const detailFields = "place_id,name,formatted_address,geometry,photos,rating,user_ratings_total,types,formatted_phone_number,opening_hours,website,reviews"

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Geometry struct {
	Location Location `json:"location"`
}

type Photo struct {
	PhotoReference string `json:"photo_reference"`
	Height         int    `json:"height"`
	Width          int    `json:"width"`
}

// Place is a candidate record returned by nearby and text search
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Vicinity         string   `json:"vicinity,omitempty"`
	Geometry         Geometry `json:"geometry"`
	Photos           []Photo  `json:"photos,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	Types            []string `json:"types"`
}

// Address returns the formatted address, falling back to vicinity
func (p *Place) Address() string {
	if p.FormattedAddress != "" {
		return p.FormattedAddress
	}
	return p.Vicinity
}

type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

type PlaceReview struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Time       int64   `json:"time"`
}

// PlaceDetails extends Place with the extended fields of the details endpoint
type PlaceDetails struct {
	Place
	FormattedPhoneNumber string        `json:"formatted_phone_number,omitempty"`
	OpeningHours         *OpeningHours `json:"opening_hours,omitempty"`
	Website              string        `json:"website,omitempty"`
	Reviews              []PlaceReview `json:"reviews,omitempty"`
}

type searchResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Results      []Place `json:"results"`
}

type detailsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Result       *PlaceDetails `json:"result"`
}
