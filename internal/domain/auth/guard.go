package auth

// CheckOwner fails with ErrNotOwner unless principal is present and owns the
// resource identified by ownerID.
func CheckOwner(principal *Principal, ownerID int64) error {
	if principal == nil || principal.User == nil || principal.User.ID != ownerID {
		return ErrNotOwner
	}
	return nil
}
