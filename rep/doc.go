/*

Package rep models a decoded Heroes of the Storm replay and the five
internal replay files that make it up.

The type that models a replay (and everything in it) is Replay,
constructed with NewFromFile or New.

*/
package rep
