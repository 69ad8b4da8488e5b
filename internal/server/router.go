package server

// Response bodies. The liveness and image-not-found texts are part of the
// client contract; change them and the note-taking side breaks.
const (
	livenessBody      = "PhotosBridge is running"
	notFoundBody      = "Not Found"
	imageNotFoundBody = "Image not found"
	accessDeniedBody  = "Access denied"
	loadFailureBody   = "Failed to load image"
	invalidURLBody    = "Invalid URL"
)

type routeKind int

const (
	// routeLiveness answers the fixed liveness text.
	routeLiveness routeKind = iota
	// routeImage resolves an asset by ID.
	routeImage
	// routeNotFound answers 404 for everything else.
	routeNotFound
)

// routeOutcome is the router's dispatch decision. AssetID is set only for
// routeImage.
type routeOutcome struct {
	kind    routeKind
	assetID string
}

// route maps a decoded path and query to a dispatch outcome. It is pure;
// the asset work it selects happens later in the connection handler.
//
// "/image" requires an "id" query parameter; if the parameter was given
// more than once the last occurrence won during parsing.
func route(path string, query map[string]string) routeOutcome {
	switch path {
	case "/":
		return routeOutcome{kind: routeLiveness}
	case "/image":
		if id, ok := query["id"]; ok {
			return routeOutcome{kind: routeImage, assetID: id}
		}
		return routeOutcome{kind: routeNotFound}
	default:
		return routeOutcome{kind: routeNotFound}
	}
}
