// README: Built-in exercise catalog; order is the recommendation tie-break.
package exercise

import "time"

// DefaultCatalog returns the built-in exercise library. The slice order
// is significant: recommendation picks the first match.
func DefaultCatalog() []Exercise {
	return []Exercise{
		{
			ID:           "ex-neck-stretches",
			Name:         "Neck Stretches",
			Description:  "Gentle neck stretches to relieve tension",
			Duration:     2 * time.Minute,
			Difficulty:   DifficultyEasy,
			Category:     CategoryStretching,
			VideoRef:     "neck_stretches.mp4",
			ThumbnailRef: "neck_stretch_thumb.jpg",
			Instructions: []string{
				"Slowly tilt your head to the right",
				"Hold for 15 seconds",
				"Return to center and repeat on left side",
			},
		},
		{
			ID:           "ex-shoulder-rolls",
			Name:         "Shoulder Rolls",
			Description:  "Loosen up tight shoulders",
			Duration:     90 * time.Second,
			Difficulty:   DifficultyEasy,
			Category:     CategoryMobility,
			VideoRef:     "shoulder_rolls.mp4",
			ThumbnailRef: "shoulder_rolls_thumb.jpg",
			Instructions: []string{
				"Roll shoulders forward in circular motion",
				"Repeat 10 times",
				"Reverse direction and repeat",
			},
		},
		{
			ID:           "ex-seated-twist",
			Name:         "Seated Spinal Twist",
			Description:  "Rotate the upper body to release the lower back",
			Duration:     3 * time.Minute,
			Difficulty:   DifficultyEasy,
			Category:     CategoryStretching,
			VideoRef:     "seated_twist.mp4",
			ThumbnailRef: "seated_twist_thumb.jpg",
			Instructions: []string{
				"Sit upright with both feet on the ground",
				"Twist the torso to the right, holding the seat back",
				"Hold for 20 seconds, then switch sides",
			},
		},
		{
			ID:           "ex-hip-circles",
			Name:         "Hip Circles",
			Description:  "Open up hips stiff from sitting",
			Duration:     2 * time.Minute,
			Difficulty:   DifficultyMedium,
			Category:     CategoryMobility,
			VideoRef:     "hip_circles.mp4",
			ThumbnailRef: "hip_circles_thumb.jpg",
			Instructions: []string{
				"Stand with hands on hips",
				"Draw slow circles with your hips, 10 each direction",
			},
		},
		{
			ID:           "ex-brisk-walk",
			Name:         "Brisk Walk",
			Description:  "Get the blood flowing around the rest area",
			Duration:     10 * time.Minute,
			Difficulty:   DifficultyMedium,
			Category:     CategoryCardio,
			VideoRef:     "brisk_walk.mp4",
			ThumbnailRef: "brisk_walk_thumb.jpg",
			Instructions: []string{
				"Walk at a pace where talking is possible but singing is not",
				"Swing your arms and keep your head up",
			},
		},
		{
			ID:           "ex-wall-pushups",
			Name:         "Wall Push-ups",
			Description:  "Light strength work using the car or a wall",
			Duration:     4 * time.Minute,
			Difficulty:   DifficultyHard,
			Category:     CategoryStrength,
			VideoRef:     "wall_pushups.mp4",
			ThumbnailRef: "wall_pushups_thumb.jpg",
			Instructions: []string{
				"Place palms on the wall at shoulder height",
				"Lower your chest toward the wall, then push back",
				"Three sets of ten",
			},
		},
	}
}
