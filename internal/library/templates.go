package library

// Built-in templates offered in the script editor.
//
//nolint:golint,gochecknoglobals
var builtins = map[string]string{
	"move": `# Move Joint Example
# Target joint positions (degrees)
positions = [0.0, 0.0, 90.0, 0.0, 90.0, 0.0]
velocity = 60.0
acceleration = 60.0

print(f"Moving to: {positions}")
# move_joint(positions, velocity, acceleration)
`,
	"gripper": `# Gripper Control Example
# stroke: 0 (open) to 700 (closed)

def control_gripper(stroke):
    print(f"Setting gripper stroke: {stroke}")
    # publish_gripper(stroke)

# Open gripper
control_gripper(0)

# Close gripper  
# control_gripper(700)
`,
	"sequence": `# Movement Sequence Example
import time

positions = [
    [0.0, 0.0, 90.0, 0.0, 90.0, 0.0],    # Home
    [30.0, -20.0, 100.0, 0.0, 80.0, 0.0], # Position 1
    [0.0, 0.0, 90.0, 0.0, 90.0, 0.0],    # Back to home
]

for i, pos in enumerate(positions):
    print(f"Moving to position {i + 1}: {pos}")
    # move_joint(pos)
    time.sleep(1)

print("Sequence complete!")
`,
}
