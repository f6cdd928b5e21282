package types

// RecordId locates one tuple within one page: the page it lives on, plus
// its slot index within that page's slot array. Like PageId, it is a plain
// comparable struct, safe to use directly as a map key.
type RecordId struct {
	PageId    PageId
	SlotIndex int
}
