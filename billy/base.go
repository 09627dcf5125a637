package billy

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
)

// HostFS is the unrestricted host filesystem. Unlike a chroot, names are
// passed to the OS untouched: relative names resolve against the working
// directory and the kernel follows symlinks, so a Backend over HostFS
// answers the way the posix backend does.
type HostFS struct {
	osfs.ChrootOS
}

var _ billy.Filesystem = (*HostFS)(nil)

// HostPaths marks HostFS names as host paths for Backend.
func (*HostFS) HostPaths() bool {
	return true
}

// Root is the host root directory.
func (*HostFS) Root() string {
	return "/"
}

// Chroot confines further access below dir. The result no longer uses host
// paths.
//
//nolint:ireturn // billy.Filesystem is an interface; signature is dictated by upstream.
func (*HostFS) Chroot(dir string) (billy.Filesystem, error) {
	return osfs.New(dir), nil
}

// NewHost creates a FileAccess over the unrestricted host filesystem, with
// every operation going through os.File.
func NewHost(opts ...fileaccess.Option) *fileaccess.FileAccess {
	return New(&HostFS{}, opts...)
}
