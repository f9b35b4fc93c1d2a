package access

// Authorize derives ownership from the record's stored owner id rather than from the caller.
func Authorize(a Actor, c Capability, ownerID string) bool {
	if !a.Authenticated() {
		return false
	}
	return CheckPermission(a.Role, c, ownerID != "" && ownerID == a.ID)
}

// CanAny reports whether the actor holds c for every record, not just its own.
func CanAny(a Actor, c Capability) bool {
	return a.Authenticated() && CheckPermission(a.Role, c, false)
}

// Can reports whether the actor holds c at least for its own records.
func Can(a Actor, c Capability) bool {
	return a.Authenticated() && CheckPermission(a.Role, c, true)
}
