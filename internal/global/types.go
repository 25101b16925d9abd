package global

// CtxKey namespaces values stored on a context.Context so they cannot
// collide with keys defined by other packages.
type CtxKey string
