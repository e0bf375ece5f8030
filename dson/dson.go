package dson

// RouteID identifies the logical destination of a Dson message,
// grounded in original_source/include/thread_highways/dson/i_has_route_id.h.
type RouteID int64

// Dson is a top-level, self-contained record: a root Object plus an
// optional RouteID identifying where it should be delivered, grounded in
// i_has_route_id.h's IHasRouteID.
type Dson struct {
	Root *Object

	routeID  RouteID
	hasRoute bool
}

// NewDson creates a Dson wrapping a fresh, empty root Object under key.
func NewDson(key int32) *Dson {
	return &Dson{Root: NewObject(key)}
}

// SetRouteID attaches a RouteID to the Dson.
func (d *Dson) SetRouteID(id RouteID) {
	d.routeID = id
	d.hasRoute = true
}

// GetRouteID returns the Dson's RouteID, if one was set, mirroring
// IHasRouteID.get_route_id.
func (d *Dson) GetRouteID() (RouteID, bool) {
	return d.routeID, d.hasRoute
}

// Encode serializes the Dson's root Object, header included.
func (d *Dson) Encode() []byte { return d.Root.Encode() }

// Navigate returns an EditController positioned at the Dson's root,
// ready to descend into nested Objects.
func (d *Dson) Navigate() *EditController { return NewEditController(d.Root) }

// String renders the Dson the way DsonEditController's operator<< does.
func (d *Dson) String() string { return d.Root.String() }
