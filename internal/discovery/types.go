// Registrar is the external collaborator boundary for announcing the loop's
// own listen address to whatever service-discovery system the deployment
// uses (etcd, consul, a DNS-based registry, ...). The loop itself never
// depends on a concrete discovery backend.
package discovery

import "context"

type Registrar interface {
	Register(ctx context.Context, serviceName, address string) error
	Deregister(ctx context.Context, serviceName, address string) error
}
