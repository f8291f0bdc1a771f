// SPDX-License-Identifier: EPL-2.0

package container

import "errors"

var (
	ErrRuntimeUnloaded    = errors.New("container runtime is unloaded")
	ErrHandlesOutstanding = errors.New("container handles still outstanding")
	ErrReleased           = errors.New("handle already released")
	ErrFileClosed         = errors.New("container file is closed")
	ErrFileSaved          = errors.New("container file already saved")
	ErrReadOnly           = errors.New("container file opened read-only")
	ErrFileExists         = errors.New("container file already exists")
	ErrFileNotFound       = errors.New("container file does not exist")
	ErrNotContainer       = errors.New("not a container file")
	ErrEssenceOpen        = errors.New("essence access still open")

	ErrForeignObject        = errors.New("object belongs to another container file")
	ErrMobRegistered        = errors.New("mob already registered with the header")
	ErrMobNotRegistered     = errors.New("mob is not registered with the header")
	ErrMobNotFound          = errors.New("mob not found")
	ErrNoDescriptor         = errors.New("mob has no essence descriptor")
	ErrDescriptorAttached   = errors.New("mob already has an essence descriptor")
	ErrIncompleteDescriptor = errors.New("essence descriptor is not fully populated")
	ErrDescriptorMismatch   = errors.New("descriptor is not the one attached to the mob")
	ErrInvalidSlot          = errors.New("slot ids start at 1")
	ErrSlotInUse            = errors.New("slot already holds essence")
	ErrCodecMismatch        = errors.New("codec does not match descriptor kind")
	ErrUnsupportedContainer = errors.New("only embedded AAF essence is supported")
	ErrEssenceNotFound      = errors.New("essence not found")
	ErrShortBuffer          = errors.New("buffer holds fewer bytes than the requested frames")
)
