// Package resolver follows PDF indirect references.
//
// Objects such as "5 0 R" point at definitions stored elsewhere in the file.
// [ObjectResolver] loads them through an [ObjectReader], following chains of
// references and reporting cycles instead of looping:
//
//	r := resolver.NewResolver(reader)
//	obj, err := r.Resolve(ref)
//
// [ObjectResolver.ResolveDeep] also expands references nested inside
// dictionaries and arrays. The recursion limit is configurable:
//
//	r := resolver.NewResolver(reader, resolver.WithMaxDepth(50))
package resolver
