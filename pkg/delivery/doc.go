// Package delivery provides a serialized single-consumer delivery gate.
// It wraps one consumer callback so that concurrent producers are
// mutually excluded: for any two concurrent deliveries, the consumer is
// never entered a second time before the first invocation returns.
//
// The package uses Go generics so the consumer payload is strongly
// typed throughout.
//
// Basic usage:
//
//	s := delivery.New(func(line string) {
//		fmt.Println(line)
//	})
//
//	// Safe from any number of goroutines; invocations never overlap.
//	go s.Deliver("from producer A")
//	go s.Deliver("from producer B")
//
//	// Swapping the consumer is synchronized with in-flight deliveries:
//	// no delivery is ever split between the old and the new consumer.
//	s.Replace(func(line string) { sink <- line })
//
// No ordering guarantee is made between racing deliveries beyond
// fairness: the underlying lock does not starve a blocked producer.
package delivery
