package game

import (
	"crystal-engine/internal/mapgen"
	"crystal-engine/internal/physics"
)

// TerrainTag marks the static blocks of a generated height map.
const TerrainTag = "Terrain"

// SpawnTerrain adds a height map of static blocks resting on the ground and returns them.
func (g *Game) SpawnTerrain(opts mapgen.HeightMapOptions) ([]*physics.RigidBody, error) {
	tiles := mapgen.GenerateHeightMapTiles(opts)
	bodies := make([]*physics.RigidBody, 0, len(tiles))
	for _, tile := range tiles {
		body := physics.NewStaticBody(tile.Centre)
		body.Tag = TerrainTag
		if err := g.World.AddRigidBody(body, physics.NewBox(body, tile.HalfSize)); err != nil {
			return bodies, err
		}
		bodies = append(bodies, body)
	}
	g.log.Logf("terrain: %d blocks", len(bodies))
	return bodies, nil
}
