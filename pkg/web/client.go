package web

import "fmt"

// indexPage returns the bootstrap page with the thin patch-applying client.
// The client keeps a map of node IDs to DOM nodes, applies patch frames in
// order, and forwards subscribed events back as JSON frames.
func indexPage(title string) string {
	return fmt.Sprintf(indexTemplate, title, title)
}

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<div id="app"></div>
<script>
(function () {
  var nodes = { 0: document.getElementById("app") };
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");

  function send(node, event) {
    ws.send(JSON.stringify({ node: node, event: event }));
  }

  function apply(p) {
    var n = nodes[p.node];
    switch (p.op) {
      case 1: // CreateNode
        nodes[p.node] = p.tag === "#text"
          ? document.createTextNode(p.value)
          : document.createElement(p.tag);
        break;
      case 2: // SetText
        n.nodeValue = p.value;
        break;
      case 3: // SetAttr
        n.setAttribute(p.key, p.value);
        if (p.key === "value" && "value" in n) n.value = p.value;
        break;
      case 4: // RemoveAttr
        n.setAttribute(p.key, "");
        break;
      case 5: // SetStyle
        n.style.setProperty(p.key, p.value);
        break;
      case 6: // RemoveStyle
        n.style.removeProperty(p.key);
        break;
      case 7: // Listen
        if (!n._loom) n._loom = {};
        if (!n._loom[p.key]) {
          var id = p.node;
          n._loom[p.key] = function () { send(id, p.key); };
          n.addEventListener(p.key, n._loom[p.key]);
        }
        break;
      case 8: // Unlisten
        if (n._loom && n._loom[p.key]) {
          n.removeEventListener(p.key, n._loom[p.key]);
          delete n._loom[p.key];
        }
        break;
      case 9: // AppendChild
        nodes[p.parent].appendChild(n);
        break;
      case 10: // RemoveChild
        nodes[p.parent].removeChild(n);
        delete nodes[p.node];
        break;
    }
  }

  ws.onmessage = function (msg) {
    var frame = JSON.parse(msg.data);
    for (var i = 0; i < frame.patches.length; i++) apply(frame.patches[i]);
  };
  ws.onclose = function () {
    document.title = "%s (disconnected)";
  };
})();
</script>
</body>
</html>
`
