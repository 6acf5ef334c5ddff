// Package gpucore defines the native backend surface consumed by rhi.
//
// This package defines the [Adapter] interface, a narrow set of create/destroy
// pairs and encoder commands that every native GPU backend implements:
//   - gogpu/wgpu HAL (Vulkan, Metal, GLES, DX12, noop) via backend/native
//   - in-memory test doubles via internal/gpumock
//
// # Architecture
//
//	               +-----------------+
//	               |  render.Session |
//	               +--------+--------+
//	                        |
//	               +--------v--------+
//	               |   rhi.Device    |
//	               | (owned wrappers)|
//	               +--------+--------+
//	                        |
//	               +--------v--------+
//	               | gpucore.Adapter |
//	               +--------+--------+
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	|   HALAdapter    |          |  gpumock.Adapter|
//	|  (hal.Device)   |          |   (liveness)    |
//	+-----------------+          +-----------------+
//
// # Resource Management
//
// GPU resources are referred to via opaque IDs ([BufferID], [TextureID], etc.).
// [InvalidID] is the null handle: an adapter returning it from a create call
// reports that the backend produced no object. Adapters are responsible for
// tracking the mapping between IDs and actual GPU resources. Ownership is not
// tracked here; the rhi wrappers own IDs and destroy each exactly once.
//
// # Numeric Values
//
// Enum values match the native C ABI of the backend surface and must not be
// renumbered. Texture formats in particular travel through
// [Adapter.TextureFormat] as raw numbers and are converted back explicitly.
package gpucore
