package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const orderNumberPrefix = "AA"

// newOrderNumber builds the human-facing order number: prefix, millisecond
// timestamp, random 0-999 suffix. Collision-avoiding rather than
// collision-proof; the durable backend's unique index on order_number is
// the backstop.
func newOrderNumber() string {
	return fmt.Sprintf("%s%d%d", orderNumberPrefix, time.Now().UnixMilli(), rand.IntN(1000))
}
