//go:build !race

package dashboard

func passwordHashCost() int {
	return 14
}
