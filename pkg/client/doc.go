// Package client connects to a hyper server session and keeps a mirror
// dom.Document in sync with it.
//
// Patch frames are applied to the mirror as they arrive. Listener slots on
// the mirror report their events back to the server as Event frames, so
// clicking a mirror node runs the action bound on the server:
//
//	c, err := client.Dial(ctx, "ws://localhost:8080/ws")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	btn := c.Document().Find(func(n *dom.Node) bool { return n.Tag == "button" })[0]
//	c.Click(btn.HID)
//	err = c.Wait(ctx, func(doc *dom.Document) bool {
//	    return strings.Contains(doc.Body().TextContent(), "1")
//	})
package client
