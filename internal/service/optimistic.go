package service

// optimistic applies a local change, attempts the remote commit and rolls
// the local change back when the commit fails. The commit error is
// returned either way so callers can surface it.
func optimistic(apply func() error, commit func() error, rollback func()) error {
	if err := apply(); err != nil {
		return err
	}
	if err := commit(); err != nil {
		rollback()
		return err
	}
	return nil
}
