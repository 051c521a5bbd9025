package paper

import (
	"io"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/djherbis/times"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type Timestamps struct {
	Created  time.Time
	Modified time.Time
}

// ReadTimestamps returns the birth time when the platform records one, the
// inode change time otherwise, and the modification time.
func ReadTimestamps(path string) (Timestamps, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return Timestamps{}, errors.Wrap(err, "move ReadTimestamps failed")
	}
	created := ts.ModTime()
	switch {
	case ts.HasBirthTime():
		created = ts.BirthTime()
	case ts.HasChangeTime():
		created = ts.ChangeTime()
	}
	return Timestamps{
		Created:  created,
		Modified: ts.ModTime(),
	}, nil
}

// MoveFile moves src to dst and restores the timestamps src had before the
// move. The creation time lands in the access time slot since it cannot be
// set portably. On failure src is left where it was.
func MoveFile(src, dst string) error {
	stamps, err := ReadTimestamps(src)
	if err != nil {
		return err
	}
	if err := move(src, dst); err != nil {
		return err
	}
	if err := os.Chtimes(dst, stamps.Created, stamps.Modified); err != nil {
		return errors.Wrap(err, "move MoveFile failed")
	}
	return nil
}

var rename = os.Rename

func move(src, dst string) error {
	err := rename(src, dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrPermission):
		return errors.Wrapf(ErrPermissionDenied, "rename %s to %s: %v", src, dst, err)
	case errors.Is(err, syscall.EXDEV):
		return copyAndRemove(src, dst)
	default:
		return errors.Wrap(err, "move failed")
	}
}

// copyAndRemove moves a file across volumes.
func copyAndRemove(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return permissionOr(err, "open source")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, "move stat source failed")
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return permissionOr(err, "create destination")
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		err = multierr.Append(errors.Wrap(err, "move copy failed"), out.Close())
		return err
	}
	if err = out.Close(); err != nil {
		return errors.Wrap(err, "move close destination failed")
	}
	if err = os.Remove(src); err != nil {
		return permissionOr(err, "remove source")
	}
	return nil
}

func permissionOr(err error, op string) error {
	if errors.Is(err, fs.ErrPermission) {
		return errors.Wrapf(ErrPermissionDenied, "move %s: %v", op, err)
	}
	return errors.Wrapf(err, "move %s failed", op)
}
