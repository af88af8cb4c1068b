package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meshsync/internal/config"
	"meshsync/internal/deform"
	"meshsync/internal/mesh"
	"meshsync/internal/mesh/importer"
	"meshsync/internal/meshstore"
	"meshsync/internal/session"
	"meshsync/internal/transport"
	"meshsync/internal/visual"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	meshName := flag.String("mesh", cfg.Mesh.Name, "mesh name in the configured store")
	room := flag.String("room", cfg.Room, "relay room")
	relayURL := flag.String("relay", cfg.RelayURL, "relay websocket url")
	inspect := flag.Bool("inspect", false, "print topology stats and exit")
	dragVertex := flag.Int("drag", -1, "vertex to drag once connected (-1 disables)")
	dragTo := flag.String("to", "0,0,0", "drag target in model space, x,y,z")
	dragTicks := flag.Int("ticks", 30, "ticks the scripted drag lasts")
	saveAs := flag.String("save", "", "publish the edited mesh under this name on exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := meshstore.Open(cfg.Mesh.StoreOptions())
	if err != nil {
		log.Fatalf("Failed to open mesh store: %v", err)
	}
	defer store.Close()

	raw, err := loadMesh(ctx, store, *meshName)
	if err != nil {
		log.Fatalf("Failed to load mesh %q: %v", *meshName, err)
	}

	if *inspect {
		topo, err := mesh.FromRaw(raw)
		if err != nil {
			log.Fatalf("Malformed mesh %q: %v", *meshName, err)
		}
		printStats(os.Stdout, *meshName, raw, topo)
		return
	}

	var script *dragScript
	if *dragVertex >= 0 {
		target, err := parseVec3(*dragTo)
		if err != nil {
			log.Fatalf("Invalid -to: %v", err)
		}
		script = newDragScript(*dragVertex, target, *dragTicks)
	}

	client, err := transport.Dial(ctx, transport.Config{
		URL:         *relayURL,
		Room:        *room,
		Participant: cfg.Participant,
	})
	if err != nil {
		log.Fatalf("Failed to connect to relay: %v", err)
	}
	defer client.Close()

	sess, err := session.Load(raw, session.Deps{
		Sink:   visual.NewRecorder(),
		Sender: client,
		Space:  deform.StaticSpace(deform.IdentitySpace()),
	}, session.Options{
		EdgeThickness:    cfg.EdgeThickness,
		RejectRemoteHeld: cfg.RejectRemoteHeld,
	})
	if err != nil {
		log.Fatalf("Failed to build session: %v", err)
	}

	go func() {
		if err := client.Run(ctx, sess.Enqueue); err != nil {
			log.Printf("Relay connection ended: %v", err)
		}
		stop()
	}()

	log.Printf("Joined room %s as %s", *room, cfg.Participant)
	runTicks(ctx, sess, cfg.TickHz, script)

	if *saveAs != "" {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := saveMesh(saveCtx, store, *saveAs, sess.Topology()); err != nil {
			log.Printf("Failed to save mesh %q: %v", *saveAs, err)
		} else {
			log.Printf("Saved edited mesh as %s", *saveAs)
		}
	}
	log.Println("Peer exiting")
}

func loadMesh(ctx context.Context, store meshstore.Store, name string) (mesh.Mesh, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return mesh.Mesh{}, err
	}
	return importer.Decode(name, data)
}

// saveMesh publishes the canonical mesh with its current positions.
func saveMesh(ctx context.Context, store meshstore.Store, name string, topo *mesh.Topology) error {
	data, err := importer.Encode(name, topo.Mesh())
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

func runTicks(ctx context.Context, sess *session.Session, hz int, script *dragScript) {
	if hz <= 0 {
		hz = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sess.Pump(); n > 0 {
				log.Printf("Applied %d remote update(s)", n)
			}
			if script != nil {
				if err := script.step(sess.Controller(), sess.Topology()); err != nil {
					log.Printf("Scripted drag stopped: %v", err)
					script = nil
				} else if script.done() {
					log.Printf("Scripted drag of vertex %d finished", script.vertex)
					script = nil
				}
			}
		}
	}
}

func printStats(w *os.File, name string, raw mesh.Mesh, topo *mesh.Topology) {
	minDeg, maxDeg := 0, 0
	for i, v := range topo.Vertices {
		d := len(v.ConnectedEdges)
		if i == 0 || d < minDeg {
			minDeg = d
		}
		if d > maxDeg {
			maxDeg = d
		}
	}
	fmt.Fprintf(w, "mesh:          %s\n", name)
	fmt.Fprintf(w, "raw vertices:  %d\n", len(raw.Vertices))
	fmt.Fprintf(w, "vertices:      %d\n", len(topo.Vertices))
	fmt.Fprintf(w, "triangles:     %d\n", len(topo.Triangles)/3)
	fmt.Fprintf(w, "edges:         %d\n", len(topo.Edges))
	fmt.Fprintf(w, "vertex degree: %d..%d\n", minDeg, maxDeg)
}
